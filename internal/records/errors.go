package records

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/grader/pkg/repository"
)

// Domain errors for record store operations.
var (
	ErrNotFound           = errors.New("grading record not found")
	ErrDuplicate          = errors.New("grading record already exists")
	ErrConflict           = errors.New("grading record was modified by another review")
	ErrInvalidReview      = errors.New("review scores must be integers from 0 to 5")
	ErrBackendUnavailable = errors.New("record store unavailable")
)

// MapHTTPStatus maps record errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidReview):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// mapError translates driver errors into the domain taxonomy. Anything not
// recognized is reported as ErrBackendUnavailable with the cause attached
// as text, so driver error types never reach callers.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrNotFound, ErrDuplicate, ErrConflict, ErrInvalidReview} {
		if errors.Is(err, known) {
			return err
		}
	}
	mapped := repository.MapError(err, ErrNotFound, ErrDuplicate)
	if mapped == ErrNotFound || mapped == ErrDuplicate {
		return mapped
	}
	if repository.IsCheckViolation(err) {
		return ErrInvalidReview
	}
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}
