package vision

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAzure  = "azure"
	ProviderGemini = "gemini"
)

// Auth types accepted by Config.AuthType for the Azure provider.
const (
	AuthAPIKey        = "api_key"
	AuthAzureIdentity = "azure_identity"
)

// Config holds vision model connection and generation parameters.
type Config struct {
	Provider    string  `toml:"provider"`
	Endpoint    string  `toml:"endpoint"`
	Deployment  string  `toml:"deployment"`
	APIVersion  string  `toml:"api_version"`
	AuthType    string  `toml:"auth_type"`
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider    string
	Endpoint    string
	Deployment  string
	APIVersion  string
	AuthType    string
	APIKey      string
	Model       string
	Timeout     string
	MaxTokens   string
	Temperature string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for dst, v := range map[*string]string{
		&c.Provider:   overlay.Provider,
		&c.Endpoint:   overlay.Endpoint,
		&c.Deployment: overlay.Deployment,
		&c.APIVersion: overlay.APIVersion,
		&c.AuthType:   overlay.AuthType,
		&c.APIKey:     overlay.APIKey,
		&c.Model:      overlay.Model,
		&c.Timeout:    overlay.Timeout,
	} {
		if v != "" {
			*dst = v
		}
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.APIVersion == "" {
		c.APIVersion = "2025-01-01-preview"
	}
	if c.AuthType == "" {
		c.AuthType = AuthAPIKey
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 800
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.Provider == ProviderGemini && c.Model == "" {
		c.Model = "gemini-2.0-flash"
	}
}

func (c *Config) loadEnv(env *Env) {
	for dst, name := range map[*string]string{
		&c.Provider:   env.Provider,
		&c.Endpoint:   env.Endpoint,
		&c.Deployment: env.Deployment,
		&c.APIVersion: env.APIVersion,
		&c.AuthType:   env.AuthType,
		&c.APIKey:     env.APIKey,
		&c.Model:      env.Model,
		&c.Timeout:    env.Timeout,
	} {
		if name == "" {
			continue
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	if env.MaxTokens != "" {
		if n, err := strconv.Atoi(os.Getenv(env.MaxTokens)); err == nil {
			c.MaxTokens = n
		}
	}
	if env.Temperature != "" {
		if f, err := strconv.ParseFloat(os.Getenv(env.Temperature), 64); err == nil {
			c.Temperature = f
		}
	}
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative")
	}

	switch c.Provider {
	case ProviderAzure:
		if c.Endpoint == "" {
			return fmt.Errorf("endpoint required")
		}
		if c.Deployment == "" {
			return fmt.Errorf("deployment required")
		}
		switch c.AuthType {
		case AuthAPIKey:
			if c.APIKey == "" {
				return fmt.Errorf("api_key required for auth_type %s", AuthAPIKey)
			}
		case AuthAzureIdentity:
		default:
			return fmt.Errorf("unsupported auth_type %q", c.AuthType)
		}
	case ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("api_key required for provider %s", ProviderGemini)
		}
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	return nil
}
