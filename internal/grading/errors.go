package grading

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/grader/internal/intake"
	"github.com/JaimeStill/grader/pkg/vision"
)

var (
	ErrTimeout          = errors.New("grading timed out")
	ErrRateLimited      = errors.New("grading rate limited")
	ErrAuthFailure      = errors.New("vision service rejected credentials")
	ErrEmptyResponse    = errors.New("vision service returned no content")
	ErrProcessingFailed = errors.New("grading failed")
	ErrStorageFailure   = errors.New("image storage failed")
)

// messages holds the client-facing text per error, in match order.
var messages = []struct {
	err  error
	text string
}{
	{ErrTimeout, "Request timed out. Please try with a smaller image."},
	{ErrRateLimited, "Rate limit exceeded. Please try again later."},
	{ErrAuthFailure, "Authentication error with the vision service."},
	{ErrEmptyResponse, "No grading result received from API."},
	{ErrStorageFailure, "Failed to store image. Please try again."},
}

// classify converts a vision client error into the grading taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, vision.ErrTimeout):
		return ErrTimeout
	case errors.Is(err, vision.ErrRateLimited):
		return ErrRateLimited
	case errors.Is(err, vision.ErrAuth):
		return ErrAuthFailure
	case errors.Is(err, vision.ErrEmptyResponse):
		return ErrEmptyResponse
	default:
		return ErrProcessingFailed
	}
}

// MapHTTPStatus maps grading errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, intake.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusRequestTimeout
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text for err. Provider detail never
// reaches the client.
func Message(err error) string {
	if errors.Is(err, intake.ErrValidation) {
		return intake.Message(err)
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.text
		}
	}
	return "Failed to process image. Please try again."
}
