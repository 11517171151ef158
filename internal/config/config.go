package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/JaimeStill/grader/internal/auth"
	"github.com/JaimeStill/grader/pkg/database"
	"github.com/JaimeStill/grader/pkg/storage"
	"github.com/JaimeStill/grader/pkg/vision"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvGraderEnv             = "GRADER_ENV"
	EnvGraderShutdownTimeout = "GRADER_SHUTDOWN_TIMEOUT"
	EnvGraderVersion         = "GRADER_VERSION"
	EnvGraderLogLevel        = "GRADER_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	Host:            "GRADER_DB_HOST",
	Port:            "GRADER_DB_PORT",
	Name:            "GRADER_DB_NAME",
	User:            "GRADER_DB_USER",
	Password:        "GRADER_DB_PASSWORD",
	SSLMode:         "GRADER_DB_SSL_MODE",
	MaxOpenConns:    "GRADER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "GRADER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "GRADER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "GRADER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "GRADER_STORAGE_CONTAINER_NAME",
	ConnectionString: "GRADER_STORAGE_CONNECTION_STRING",
	AccountURL:       "GRADER_STORAGE_ACCOUNT_URL",
}

var visionEnv = &vision.Env{
	Provider:    "GRADER_VISION_PROVIDER",
	Endpoint:    "GRADER_VISION_ENDPOINT",
	Deployment:  "GRADER_VISION_DEPLOYMENT",
	APIVersion:  "GRADER_VISION_API_VERSION",
	AuthType:    "GRADER_VISION_AUTH_TYPE",
	APIKey:      "GRADER_VISION_API_KEY",
	Model:       "GRADER_VISION_MODEL",
	Timeout:     "GRADER_VISION_TIMEOUT",
	MaxTokens:   "GRADER_VISION_MAX_TOKENS",
	Temperature: "GRADER_VISION_TEMPERATURE",
}

var authEnv = &auth.Env{
	Issuer:            "GRADER_AUTH_ISSUER",
	ClientID:          "GRADER_AUTH_CLIENT_ID",
	ClientSecret:      "GRADER_AUTH_CLIENT_SECRET",
	RedirectURL:       "GRADER_AUTH_REDIRECT_URL",
	Scopes:            "GRADER_AUTH_SCOPES",
	CookieName:        "GRADER_AUTH_COOKIE_NAME",
	InsecureCookie:    "GRADER_AUTH_INSECURE_COOKIE",
	PostLoginRedirect: "GRADER_AUTH_POST_LOGIN_REDIRECT",
}

// Config is the root configuration for the grading service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Vision          vision.Config   `toml:"vision"`
	Auth            auth.Config     `toml:"auth"`
	Analytics       AnalyticsConfig `toml:"analytics"`
	LogLevel        string          `toml:"log_level"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the GRADER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvGraderEnv); env != "" {
		return env
	}
	return "local"
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Vision.Merge(&overlay.Vision)
	c.Auth.Merge(&overlay.Auth)
	c.Analytics.Merge(&overlay.Analytics)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Vision.Finalize(visionEnv); err != nil {
		return fmt.Errorf("vision: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Analytics.Finalize(); err != nil {
		return fmt.Errorf("analytics: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvGraderShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvGraderVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvGraderLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvGraderEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
