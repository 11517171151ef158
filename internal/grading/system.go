package grading

import (
	"context"

	"github.com/JaimeStill/grader/internal/intake"
)

// Submission is one uploaded photograph with its form fields.
type Submission struct {
	File       intake.File
	Image      []byte
	BatchID    string
	Station    string
	BatchInfo  string
	Technician string
}

// Grades are the AI scores returned to the client.
type Grades struct {
	Smoothness int `json:"smoothness"`
	Shininess  int `json:"shininess"`
	Combined   int `json:"combined"`
}

// Result is the grading outcome returned to the client. Persisted is false
// when the record store rejected the write; the grade is still returned.
type Result struct {
	Grade      string `json:"grade"`
	Reasoning  string `json:"reasoning"`
	DocumentID string `json:"documentId,omitempty"`
	BatchID    string `json:"batchId"`
	ImageURL   string `json:"imageUrl"`
	Grades     Grades `json:"grades"`
	Persisted  bool   `json:"persisted"`
	Warning    string `json:"warning,omitempty"`
}

// System defines the grading contract.
type System interface {
	Handler() *Handler
	Submit(ctx context.Context, sub Submission) (*Result, error)
}
