package auth

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotReady        = errors.New("identity provider not ready")
	ErrLoginDisabled   = errors.New("sign-in flow not configured")
	ErrInvalidState    = errors.New("invalid sign-in state")
	ErrExchangeFailed  = errors.New("sign-in exchange failed")
)

// MapHTTPStatus maps auth errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, ErrLoginDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrExchangeFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
