package auth

import (
	"net/http"

	"github.com/JaimeStill/grader/pkg/handlers"
)

// Required rejects requests without a valid token with 401.
func (a *Authenticator) Required() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(r)
			if err != nil {
				if !isUnauthenticated(err) {
					handlers.RespondMessage(w, a.logger, MapHTTPStatus(err), "Authentication service unavailable.", err)
					return
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="grader"`)
				handlers.RespondMessage(w, a.logger, http.StatusUnauthorized, "Authentication required.", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Optional attaches the identity when a valid token is present and passes
// anonymous requests through unchanged.
func (a *Authenticator) Optional() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(r)
			if err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			} else if a.token(r) != "" {
				a.logger.Debug("ignoring invalid token on optional route", "error", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}
