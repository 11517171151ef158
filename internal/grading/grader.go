package grading

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/grader/pkg/vision"
)

// PlaceholderConfidence is recorded with every AI grade. No logic reads it.
const PlaceholderConfidence = 0.85

// Outcome is a parsed AI grade.
type Outcome struct {
	Shininess      int
	Smoothness     int
	Combined       int
	Scores         Scores
	RawText        string
	Confidence     float64
	Model          string
	ProcessingTime time.Duration
}

// Grader sends images to the vision model and parses the reply.
type Grader struct {
	client vision.Client
	logger *slog.Logger
}

func NewGrader(client vision.Client, logger *slog.Logger) *Grader {
	return &Grader{
		client: client,
		logger: logger.With("system", "grader"),
	}
}

// Grade runs one vision call. The call is not retried; the client enforces
// its configured timeout.
func (g *Grader) Grade(ctx context.Context, image []byte, contentType string) (*Outcome, error) {
	start := time.Now()

	resp, err := g.client.Describe(ctx, vision.Request{
		SystemPrompt: SystemPrompt,
		UserPrompt:   UserPrompt,
		Image:        image,
		ContentType:  contentType,
	})
	elapsed := time.Since(start)
	observeVision(g.client.Provider(), elapsed, err)

	if err != nil {
		g.logger.Error("vision call failed",
			"provider", g.client.Provider(),
			"duration", elapsed,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", classify(err), err)
	}

	scores := ParseScores(resp.Content)
	if !scores.Complete() {
		g.logger.Warn("model reply missing score lines", "model", resp.Model)
	}
	if scores.Inconsistent() {
		g.logger.Warn("model combined score disagrees with components",
			"reported", *scores.ReportedCombined,
			"derived", scores.Combined,
		)
	}

	return &Outcome{
		Shininess:      scores.ShininessValue(),
		Smoothness:     scores.SmoothnessValue(),
		Combined:       scores.Combined,
		Scores:         scores,
		RawText:        resp.Content,
		Confidence:     PlaceholderConfidence,
		Model:          resp.Model,
		ProcessingTime: elapsed,
	}, nil
}
