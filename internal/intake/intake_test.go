package intake_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/JaimeStill/grader/internal/intake"
)

func TestValidate(t *testing.T) {
	const ceiling = 6291456

	tests := []struct {
		name    string
		file    *intake.File
		wantErr error
		message string
	}{
		{"nil file", nil, intake.ErrMissing, "No image uploaded."},
		{"empty upload", &intake.File{Filename: "potato.jpg", ContentType: "image/jpeg"}, intake.ErrMissing, "No image uploaded."},
		{"jpeg", &intake.File{Filename: "a.jpg", ContentType: "image/jpeg", Size: 1024}, nil, ""},
		{"jpg alias", &intake.File{Filename: "a.jpg", ContentType: "image/jpg", Size: 1024}, nil, ""},
		{"png", &intake.File{Filename: "a.png", ContentType: "image/png", Size: 1024}, nil, ""},
		{"uppercase type", &intake.File{Filename: "a.png", ContentType: "IMAGE/PNG", Size: 1024}, nil, ""},
		{"type with params", &intake.File{Filename: "a.jpg", ContentType: "image/jpeg; charset=binary", Size: 1024}, nil, ""},
		{"exactly at ceiling", &intake.File{Filename: "a.jpg", ContentType: "image/jpeg", Size: ceiling}, nil, ""},
		{"one byte over", &intake.File{Filename: "a.jpg", ContentType: "image/jpeg", Size: ceiling + 1}, intake.ErrTooLarge, "File too large. Maximum size is 6MB."},
		{"gif", &intake.File{Filename: "a.gif", ContentType: "image/gif", Size: 1024}, intake.ErrInvalidType, "Invalid file type. Please upload a JPEG or PNG image."},
		{"webp", &intake.File{Filename: "a.webp", ContentType: "image/webp", Size: 1024}, intake.ErrInvalidType, "Invalid file type. Please upload a JPEG or PNG image."},
		{"no type", &intake.File{Filename: "a", ContentType: "", Size: 1024}, intake.ErrInvalidType, "Invalid file type. Please upload a JPEG or PNG image."},
		{"oversized gif reports type", &intake.File{Filename: "a.gif", ContentType: "image/gif", Size: ceiling * 2}, intake.ErrInvalidType, "Invalid file type. Please upload a JPEG or PNG image."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := intake.Validate(tt.file)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, intake.ErrValidation) {
				t.Error("error should wrap ErrValidation")
			}
			if got := intake.Message(err); got != tt.message {
				t.Errorf("message = %q, want %q", got, tt.message)
			}
			if intake.MapHTTPStatus(err) != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", intake.MapHTTPStatus(err))
			}
		})
	}
}

func TestValidatorCustomCeiling(t *testing.T) {
	v := intake.NewValidator(2 * 1024 * 1024)

	err := v.Validate(&intake.File{Filename: "a.png", ContentType: "image/png", Size: 3 * 1024 * 1024})
	if !errors.Is(err, intake.ErrTooLarge) {
		t.Fatalf("error = %v, want ErrTooLarge", err)
	}
	if got := intake.Message(err); got != "File too large. Maximum size is 2MB." {
		t.Errorf("message = %q", got)
	}
}

func TestNewValidatorDefault(t *testing.T) {
	if got := intake.NewValidator(0).MaxSize(); got != intake.DefaultMaxSize {
		t.Errorf("MaxSize = %d, want %d", got, intake.DefaultMaxSize)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"image/jpeg":               "image/jpeg",
		" Image/PNG ":              "image/png",
		"image/jpeg; q=0.9":        "image/jpeg",
		"image/png;;broken=":       "image/png",
		"application/octet-stream": "application/octet-stream",
	}

	for in, want := range tests {
		if got := intake.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapHTTPStatusUnknown(t *testing.T) {
	if got := intake.MapHTTPStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", got)
	}
}
