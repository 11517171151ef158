// Package intake validates uploaded potato photographs before any network
// call is made.
package intake

import (
	"fmt"
	"mime"
	"strings"

	"github.com/JaimeStill/grader/pkg/formatting"
)

// DefaultMaxSize is the upload ceiling when none is configured (6 MiB).
const DefaultMaxSize int64 = 6 * 1024 * 1024

var acceptedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// File describes an uploaded image as received from the client.
type File struct {
	Filename    string
	ContentType string
	Size        int64
}

// Validator applies the upload rules with a configured size ceiling.
type Validator struct {
	maxSize int64
}

// NewValidator creates a Validator. A non-positive maxSize uses DefaultMaxSize.
func NewValidator(maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Validator{maxSize: maxSize}
}

// MaxSize returns the configured ceiling in bytes.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Validate checks presence, type, and size. An empty upload counts as
// missing; a file whose size equals the ceiling is accepted.
func (v *Validator) Validate(f *File) error {
	if f == nil || f.Size == 0 {
		return ErrMissing
	}
	if !Accepted(f.ContentType) {
		return fmt.Errorf("%w: %q", ErrInvalidType, f.ContentType)
	}
	if f.Size > v.maxSize {
		return &TooLargeError{Size: f.Size, Max: v.maxSize}
	}
	return nil
}

// Validate checks f against the default ceiling.
func Validate(f *File) error {
	return NewValidator(DefaultMaxSize).Validate(f)
}

// Accepted reports whether contentType is an accepted image type. Parameters
// are ignored and the comparison is case-insensitive.
func Accepted(contentType string) bool {
	return acceptedTypes[Normalize(contentType)]
}

// Normalize strips parameters from contentType and lowercases it.
func Normalize(contentType string) string {
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		media, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(media))
}

// TooLargeError reports an upload above the size ceiling.
type TooLargeError struct {
	Size int64
	Max  int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("File too large. Maximum size is %s.", compactSize(e.Max))
}

func (e *TooLargeError) Unwrap() error {
	return ErrTooLarge
}

// compactSize renders whole-unit sizes without a space ("6MB").
func compactSize(n int64) string {
	return strings.ReplaceAll(formatting.FormatBytes(n, 0), " ", "")
}
