package intake

import (
	"errors"
	"net/http"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrMissing     = &validationError{msg: "No image uploaded."}
	ErrInvalidType = &validationError{msg: "Invalid file type. Please upload a JPEG or PNG image."}
	ErrTooLarge    = &validationError{msg: "File too large."}
)

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

// Message returns the client-facing message for a validation error.
func Message(err error) string {
	var tooLarge *TooLargeError
	switch {
	case errors.As(err, &tooLarge):
		return tooLarge.Error()
	case errors.Is(err, ErrInvalidType):
		return ErrInvalidType.Error()
	case errors.Is(err, ErrMissing):
		return ErrMissing.Error()
	default:
		return err.Error()
	}
}

// MapHTTPStatus maps intake errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
