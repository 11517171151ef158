package auth_test

import (
	"testing"

	"github.com/JaimeStill/grader/internal/auth"
)

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_AUTH_ISSUER", "https://login.example.com/t/v2.0")
	t.Setenv("TEST_AUTH_CLIENT_ID", "grader")
	t.Setenv("TEST_AUTH_SCOPES", "openid, email")
	t.Setenv("TEST_AUTH_INSECURE", "true")

	cfg := auth.Config{}
	err := cfg.Finalize(&auth.Env{
		Issuer:         "TEST_AUTH_ISSUER",
		ClientID:       "TEST_AUTH_CLIENT_ID",
		Scopes:         "TEST_AUTH_SCOPES",
		InsecureCookie: "TEST_AUTH_INSECURE",
	})
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if cfg.CookieName != "grader_session" {
		t.Errorf("cookie name = %s", cfg.CookieName)
	}
	if len(cfg.Scopes) != 2 || cfg.Scopes[1] != "email" {
		t.Errorf("scopes = %v", cfg.Scopes)
	}
	if !cfg.InsecureCookie {
		t.Error("insecure cookie not applied")
	}
	if cfg.LoginEnabled() {
		t.Error("login should be disabled without client secret")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  auth.Config
	}{
		{"missing issuer", auth.Config{ClientID: "c"}},
		{"missing client", auth.Config{Issuer: "https://i"}},
		{"secret without redirect", auth.Config{Issuer: "https://i", ClientID: "c", ClientSecret: "s"}},
		{"redirect without secret", auth.Config{Issuer: "https://i", ClientID: "c", RedirectURL: "http://r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := auth.Config{Issuer: "https://a", ClientID: "c", Scopes: []string{"openid"}}
	base.Merge(&auth.Config{Issuer: "https://b", InsecureCookie: true})

	if base.Issuer != "https://b" || base.ClientID != "c" || !base.InsecureCookie {
		t.Errorf("merged = %+v", base)
	}
	if len(base.Scopes) != 1 {
		t.Errorf("scopes = %v", base.Scopes)
	}
}
