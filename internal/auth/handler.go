package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/JaimeStill/grader/pkg/handlers"
	"github.com/JaimeStill/grader/pkg/routes"
)

const (
	stateCookie    = "grader_oauth_state"
	verifierCookie = "grader_oauth_verifier"
	flowTTL        = 10 * time.Minute
)

// Handler serves the sign-in, sign-out, and identity endpoints.
type Handler struct {
	auth   *Authenticator
	logger *slog.Logger
}

func NewHandler(a *Authenticator, logger *slog.Logger) *Handler {
	return &Handler{
		auth:   a,
		logger: logger.With("handler", "auth"),
	}
}

// Routes returns the route group for the sign-in flow.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/login", Handler: h.Login},
			{Method: "GET", Pattern: "/callback", Handler: h.Callback},
			{Method: "POST", Pattern: "/logout", Handler: h.Logout},
		},
		Children: []routes.Group{
			{
				Prefix:     "/me",
				Middleware: []func(http.Handler) http.Handler{h.auth.Required()},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.Me},
				},
			},
		},
	}
}

// Login redirects to the identity provider with a fresh state and PKCE verifier.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	oc, err := h.auth.oauth()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	h.setFlowCookie(w, stateCookie, state)
	h.setFlowCookie(w, verifierCookie, verifier)

	http.Redirect(w, r, oc.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), http.StatusFound)
}

// Callback completes the code exchange and stores the ID token in the session cookie.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	oc, err := h.auth.oauth()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		err := fmt.Errorf("%w: provider returned %s: %s", ErrUnauthenticated, e, q.Get("error_description"))
		handlers.RespondMessage(w, h.logger, http.StatusUnauthorized, "Sign-in was not completed.", err)
		return
	}

	state, err := r.Cookie(stateCookie)
	if err != nil || state.Value == "" || state.Value != q.Get("state") {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidState)
		return
	}
	verifier, err := r.Cookie(verifierCookie)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidState)
		return
	}

	tok, err := oc.Exchange(r.Context(), q.Get("code"), oauth2.VerifierOption(verifier.Value))
	if err != nil {
		handlers.RespondMessage(w, h.logger, http.StatusBadGateway, ErrExchangeFailed.Error(), err)
		return
	}

	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		handlers.RespondMessage(w, h.logger, http.StatusBadGateway, ErrExchangeFailed.Error(), fmt.Errorf("token response missing id_token"))
		return
	}

	id, err := h.auth.Verify(r.Context(), raw)
	if err != nil {
		handlers.RespondMessage(w, h.logger, MapHTTPStatus(err), "Sign-in was not completed.", err)
		return
	}

	h.clearCookie(w, stateCookie)
	h.clearCookie(w, verifierCookie)
	http.SetCookie(w, &http.Cookie{
		Name:     h.auth.cfg.CookieName,
		Value:    raw,
		Path:     "/",
		Expires:  tok.Expiry,
		HttpOnly: true,
		Secure:   !h.auth.cfg.InsecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("signed in", "principal", id.Principal())
	http.Redirect(w, r, h.auth.cfg.PostLoginRedirect, http.StatusFound)
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, h.auth.cfg.CookieName)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the identity of the authenticated caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := FromContext(r.Context())
	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"identity":  id,
		"principal": id.Principal(),
	})
}

func (h *Handler) setFlowCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(flowTTL.Seconds()),
		HttpOnly: true,
		Secure:   !h.auth.cfg.InsecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !h.auth.cfg.InsecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
