// Package authtest builds authenticators backed by an in-memory signing key
// for handler tests in other packages.
package authtest

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/JaimeStill/grader/internal/auth"
)

const (
	Issuer   = "https://login.example.com/tenant/v2.0"
	ClientID = "grader-web"
)

// Provider signs ID tokens that its Authenticator accepts.
type Provider struct {
	Auth *auth.Authenticator
	key  *rsa.PrivateKey
}

// New returns a Provider whose authenticator is ready without discovery.
func New(t *testing.T) *Provider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	cfg := &auth.Config{Issuer: Issuer, ClientID: ClientID}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize auth config: %v", err)
	}

	verifier := oidc.NewVerifier(
		Issuer,
		&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}},
		&oidc.Config{ClientID: ClientID},
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &Provider{
		Auth: auth.NewStatic(cfg, verifier, oauth2.Endpoint{}, logger),
		key:  key,
	}
}

// Token returns a signed ID token for the given email.
func (p *Provider) Token(t *testing.T, email string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"iss":   Issuer,
		"aud":   ClientID,
		"sub":   "sub-" + email,
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.key)
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

// Bearer returns the Authorization header value for email.
func (p *Provider) Bearer(t *testing.T, email string) string {
	t.Helper()
	return "Bearer " + p.Token(t, email)
}
