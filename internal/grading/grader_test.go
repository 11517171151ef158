package grading_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/JaimeStill/grader/internal/grading"
	"github.com/JaimeStill/grader/internal/intake"
	"github.com/JaimeStill/grader/pkg/vision"
)

func TestGrade(t *testing.T) {
	client := &fakeVision{
		content: "Shininess: 4/5\nSmoothness: 3/5\nCombined: 7/10\nEven skin.",
		model:   "gpt-4.1",
	}
	g := grading.NewGrader(client, discardLogger())

	out, err := g.Grade(context.Background(), []byte("jpeg"), "image/jpeg")
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}

	if out.Shininess != 4 || out.Smoothness != 3 || out.Combined != 7 {
		t.Errorf("scores = %d/%d/%d", out.Shininess, out.Smoothness, out.Combined)
	}
	if out.Confidence != grading.PlaceholderConfidence {
		t.Errorf("Confidence = %v", out.Confidence)
	}
	if out.Model != "gpt-4.1" || out.RawText != client.content {
		t.Errorf("outcome = %+v", out)
	}
	if client.last.SystemPrompt != grading.SystemPrompt || client.last.UserPrompt != grading.UserPrompt {
		t.Error("prompts not sent")
	}
	if client.last.ContentType != "image/jpeg" || string(client.last.Image) != "jpeg" {
		t.Errorf("request = %+v", client.last)
	}
}

func TestGradeErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       error
		wantStatus int
		wantMsg    string
	}{
		{"timeout", vision.ErrTimeout, grading.ErrTimeout, http.StatusRequestTimeout, "Request timed out. Please try with a smaller image."},
		{"rate limited", vision.ErrRateLimited, grading.ErrRateLimited, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later."},
		{"auth", vision.ErrAuth, grading.ErrAuthFailure, http.StatusInternalServerError, "Authentication error with the vision service."},
		{"empty", vision.ErrEmptyResponse, grading.ErrEmptyResponse, http.StatusInternalServerError, "No grading result received from API."},
		{"upstream", fmt.Errorf("%w: status 500", vision.ErrUpstream), grading.ErrProcessingFailed, http.StatusInternalServerError, "Failed to process image. Please try again."},
		{"unknown", errors.New("tls: handshake failure"), grading.ErrProcessingFailed, http.StatusInternalServerError, "Failed to process image. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeVision{err: tt.err}
			g := grading.NewGrader(client, discardLogger())

			_, err := g.Grade(context.Background(), []byte("jpeg"), "image/jpeg")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if got := grading.MapHTTPStatus(err); got != tt.wantStatus {
				t.Errorf("status = %d, want %d", got, tt.wantStatus)
			}
			if got := grading.Message(err); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
			if client.calls != 1 {
				t.Errorf("calls = %d, want 1", client.calls)
			}
		})
	}
}

func TestMessageValidation(t *testing.T) {
	err := intake.NewValidator(intake.DefaultMaxSize).Validate(&intake.File{ContentType: "image/gif", Size: 10})
	if grading.MapHTTPStatus(err) != http.StatusBadRequest {
		t.Errorf("status = %d", grading.MapHTTPStatus(err))
	}
	if got := grading.Message(err); got != "Invalid file type. Please upload a JPEG or PNG image." {
		t.Errorf("message = %q", got)
	}
}
