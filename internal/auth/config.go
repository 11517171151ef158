package auth

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds OIDC identity provider settings.
// Issuer and ClientID are required for token verification. ClientSecret and
// RedirectURL additionally enable the interactive sign-in flow.
type Config struct {
	Issuer            string   `toml:"issuer"`
	ClientID          string   `toml:"client_id"`
	ClientSecret      string   `toml:"client_secret"`
	RedirectURL       string   `toml:"redirect_url"`
	Scopes            []string `toml:"scopes"`
	CookieName        string   `toml:"cookie_name"`
	InsecureCookie    bool     `toml:"insecure_cookie"`
	PostLoginRedirect string   `toml:"post_login_redirect"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Issuer            string
	ClientID          string
	ClientSecret      string
	RedirectURL       string
	Scopes            string
	CookieName        string
	InsecureCookie    string
	PostLoginRedirect string
}

// LoginEnabled reports whether the authorization-code sign-in flow is configured.
func (c *Config) LoginEnabled() bool {
	return c.ClientSecret != "" && c.RedirectURL != ""
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
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.ClientSecret != "" {
		c.ClientSecret = overlay.ClientSecret
	}
	if overlay.RedirectURL != "" {
		c.RedirectURL = overlay.RedirectURL
	}
	if len(overlay.Scopes) > 0 {
		c.Scopes = overlay.Scopes
	}
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
	if overlay.InsecureCookie {
		c.InsecureCookie = true
	}
	if overlay.PostLoginRedirect != "" {
		c.PostLoginRedirect = overlay.PostLoginRedirect
	}
}

func (c *Config) loadDefaults() {
	if len(c.Scopes) == 0 {
		c.Scopes = []string{"openid", "profile", "email"}
	}
	if c.CookieName == "" {
		c.CookieName = "grader_session"
	}
	if c.PostLoginRedirect == "" {
		c.PostLoginRedirect = "/"
	}
}

func (c *Config) loadEnv(env *Env) {
	get := func(name string) string {
		if name == "" {
			return ""
		}
		return os.Getenv(name)
	}

	if v := get(env.Issuer); v != "" {
		c.Issuer = v
	}
	if v := get(env.ClientID); v != "" {
		c.ClientID = v
	}
	if v := get(env.ClientSecret); v != "" {
		c.ClientSecret = v
	}
	if v := get(env.RedirectURL); v != "" {
		c.RedirectURL = v
	}
	if v := get(env.Scopes); v != "" {
		c.Scopes = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}
	if v := get(env.CookieName); v != "" {
		c.CookieName = v
	}
	if v := get(env.InsecureCookie); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.InsecureCookie = b
		}
	}
	if v := get(env.PostLoginRedirect); v != "" {
		c.PostLoginRedirect = v
	}
}

func (c *Config) validate() error {
	if c.Issuer == "" {
		return fmt.Errorf("issuer required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required")
	}
	if (c.ClientSecret == "") != (c.RedirectURL == "") {
		return fmt.Errorf("client_secret and redirect_url must be set together")
	}
	return nil
}
