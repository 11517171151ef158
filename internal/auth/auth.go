// Package auth verifies OIDC ID tokens issued by the enterprise identity
// provider and runs the authorization-code sign-in flow that places the
// token in a session cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/JaimeStill/grader/pkg/lifecycle"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Identity is the authenticated caller extracted from a verified ID token.
type Identity struct {
	Subject           string `json:"subject"`
	Email             string `json:"email,omitempty"`
	PreferredUsername string `json:"preferredUsername,omitempty"`
	Name              string `json:"name,omitempty"`
}

// Principal returns the name recorded against reviews: email, then
// preferred_username, then subject.
func (i *Identity) Principal() string {
	switch {
	case i.Email != "":
		return i.Email
	case i.PreferredUsername != "":
		return i.PreferredUsername
	default:
		return i.Subject
	}
}

type claims struct {
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
}

type provider struct {
	verifier *oidc.IDTokenVerifier
	oauth    *oauth2.Config
}

// Authenticator verifies tokens and serves the sign-in routes.
// Provider discovery runs during lifecycle startup; until it completes,
// verification fails with ErrNotReady.
type Authenticator struct {
	cfg      *Config
	provider atomic.Pointer[provider]
	logger   *slog.Logger
}

// New creates an Authenticator that discovers the issuer at startup.
func New(cfg *Config, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		cfg:    cfg,
		logger: logger.With("system", "auth"),
	}
}

// NewStatic creates an Authenticator from an already-built verifier and
// token endpoint, skipping discovery.
func NewStatic(cfg *Config, verifier *oidc.IDTokenVerifier, endpoint oauth2.Endpoint, logger *slog.Logger) *Authenticator {
	a := New(cfg, logger)
	a.provider.Store(&provider{
		verifier: verifier,
		oauth:    a.oauthConfig(endpoint),
	})
	return a
}

// Start registers issuer discovery as a startup hook.
func (a *Authenticator) Start(lc *lifecycle.Coordinator) error {
	if a.provider.Load() != nil {
		return nil
	}

	lc.OnStartup("auth", func() error {
		p, err := oidc.NewProvider(lc.Context(), a.cfg.Issuer)
		if err != nil {
			return fmt.Errorf("%w: discover %s: %v", ErrNotReady, a.cfg.Issuer, err)
		}

		a.provider.Store(&provider{
			verifier: p.Verifier(&oidc.Config{ClientID: a.cfg.ClientID}),
			oauth:    a.oauthConfig(p.Endpoint()),
		})

		a.logger.Info("identity provider discovered", "issuer", a.cfg.Issuer, "login", a.cfg.LoginEnabled())
		return nil
	})
	return nil
}

// Verify validates a raw ID token and returns the caller identity.
func (a *Authenticator) Verify(ctx context.Context, raw string) (*Identity, error) {
	p := a.provider.Load()
	if p == nil {
		return nil, ErrNotReady
	}

	tok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	var c claims
	if err := tok.Claims(&c); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", ErrUnauthenticated, err)
	}

	return &Identity{
		Subject:           tok.Subject,
		Email:             c.Email,
		PreferredUsername: c.PreferredUsername,
		Name:              c.Name,
	}, nil
}

// Authenticate resolves the identity carried by r, from the Authorization
// bearer header or the session cookie.
func (a *Authenticator) Authenticate(r *http.Request) (*Identity, error) {
	raw := a.token(r)
	if raw == "" {
		return nil, ErrUnauthenticated
	}
	return a.Verify(r.Context(), raw)
}

// Handler returns the sign-in route handler.
func (a *Authenticator) Handler() *Handler {
	return NewHandler(a, a.logger)
}

func (a *Authenticator) token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}

	if c, err := r.Cookie(a.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

func (a *Authenticator) oauthConfig(endpoint oauth2.Endpoint) *oauth2.Config {
	if !a.cfg.LoginEnabled() {
		return nil
	}
	return &oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		RedirectURL:  a.cfg.RedirectURL,
		Endpoint:     endpoint,
		Scopes:       a.cfg.Scopes,
	}
}

func (a *Authenticator) oauth() (*oauth2.Config, error) {
	p := a.provider.Load()
	if p == nil {
		return nil, ErrNotReady
	}
	if p.oauth == nil {
		return nil, ErrLoginDisabled
	}
	return p.oauth, nil
}

func isUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
