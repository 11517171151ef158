package grading

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/grader/internal/auth"
	"github.com/JaimeStill/grader/internal/intake"
	"github.com/JaimeStill/grader/internal/records"
	"github.com/JaimeStill/grader/pkg/formatting"
)

// AnalysisComplete is the headline grade string of every successful result.
const AnalysisComplete = "Analysis complete"

// UnpersistedWarning accompanies a result whose record could not be saved.
const UnpersistedWarning = "Grading completed but the result could not be saved. It will not appear in history."

type service struct {
	validator *intake.Validator
	grader    *Grader
	images    ImageStore
	records   records.System
	auth      *auth.Authenticator
	logger    *slog.Logger
	now       func() time.Time
}

// New creates the grading system. Uploads are checked by validator before
// any storage or model call.
func New(
	validator *intake.Validator,
	grader *Grader,
	images ImageStore,
	store records.System,
	authn *auth.Authenticator,
	logger *slog.Logger,
) System {
	return &service{
		validator: validator,
		grader:    grader,
		images:    images,
		records:   store,
		auth:      authn,
		logger:    logger.With("system", "grading"),
		now:       time.Now,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.auth, s.validator.MaxSize(), s.logger)
}

// Submit validates, stores, grades and records one image. The stored image
// is removed when grading fails. A record store failure does not fail the
// submission: the result comes back with Persisted false and the image is
// kept for reconciliation.
func (s *service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if err := s.validator.Validate(&sub.File); err != nil {
		gradings.WithLabelValues("rejected").Inc()
		return nil, err
	}

	now := s.now()
	batchID := sub.BatchID
	if batchID == "" {
		batchID = NewBatchID(now)
	}
	contentType := intake.Normalize(sub.File.ContentType)

	key := ObjectPath(batchID, sub.File.Filename, now)
	url, err := s.images.Store(ctx, sub.Image, key, contentType, map[string]string{
		"batchId":          batchID,
		"originalFilename": Sanitize(sub.File.Filename),
	})
	if err != nil {
		gradings.WithLabelValues("failed").Inc()
		return nil, err
	}

	outcome, err := s.grader.Grade(ctx, sub.Image, contentType)
	if err != nil {
		s.images.Delete(context.WithoutCancel(ctx), url)
		gradings.WithLabelValues("failed").Inc()
		return nil, err
	}

	result := &Result{
		Grade:     AnalysisComplete,
		Reasoning: outcome.RawText,
		BatchID:   batchID,
		ImageURL:  url,
		Grades: Grades{
			Smoothness: outcome.Smoothness,
			Shininess:  outcome.Shininess,
			Combined:   outcome.Combined,
		},
	}

	rec, err := s.records.Create(ctx, records.CreateCommand{
		BatchID:        batchID,
		ImageURL:       url,
		ImageSize:      formatting.FormatBytes(sub.File.Size, 2),
		Smoothness:     outcome.Smoothness,
		Shininess:      outcome.Shininess,
		Confidence:     outcome.Confidence,
		ModelVersion:   outcome.Model,
		ProcessingTime: outcome.ProcessingTime,
		Technician:     sub.Technician,
		Station:        sub.Station,
		BatchInfo:      sub.BatchInfo,
	})
	if err != nil {
		s.logger.Warn("grading result not persisted; image kept",
			"batch_id", batchID,
			"key", key,
			"error", err,
		)
		gradings.WithLabelValues("unpersisted").Inc()
		result.Warning = UnpersistedWarning
		return result, nil
	}

	result.DocumentID = rec.ID
	result.Grades = Grades{
		Smoothness: rec.AIGrading.Smoothness,
		Shininess:  rec.AIGrading.Shininess,
		Combined:   rec.AIGrading.Combined,
	}
	result.Persisted = true
	gradings.WithLabelValues("persisted").Inc()

	s.logger.Info("image graded",
		"id", rec.ID,
		"batch_id", batchID,
		"combined", outcome.Combined,
		"duration", outcome.ProcessingTime,
	)
	return result, nil
}

// NewBatchID generates BLK-<yyyymmdd>-<8 hex> for submissions without one.
func NewBatchID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("BLK-%s-%s", now.UTC().Format("20060102"), suffix)
}
