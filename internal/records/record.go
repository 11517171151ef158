// Package records stores grading results and the technician reviews made
// against them.
package records

import (
	"fmt"
	"time"
)

// DocumentType tags every grading record.
const DocumentType = "grading_result"

// Review states.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Defaults applied at creation when the submitter leaves a field empty.
const (
	DefaultStation    = "unknown"
	DefaultTechnician = "unknown"
)

// Record is one graded photograph. Only Review, UpdatedAt and Version change
// after creation.
type Record struct {
	ID            string        `json:"id"`
	BatchID       string        `json:"batchId"`
	DocumentType  string        `json:"documentType"`
	ImageMetadata ImageMetadata `json:"imageMetadata"`
	AIGrading     AIGrading     `json:"aiGrading"`
	Review        Review        `json:"review"`
	Timestamps    Timestamps    `json:"timestamps"`
	Version       int           `json:"version"`
}

type ImageMetadata struct {
	OriginalImageURL string    `json:"originalImageUrl"`
	ImageSize        string    `json:"imageSize"`
	CaptureTimestamp time.Time `json:"captureTimestamp"`
}

type AIGrading struct {
	Smoothness       int     `json:"smoothness"`
	Shininess        int     `json:"shininess"`
	Combined         int     `json:"combined"`
	Confidence       float64 `json:"confidence"`
	ModelVersion     string  `json:"modelVersion"`
	ProcessingTimeMs int64   `json:"processingTimeMs"`
}

type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateCommand carries a freshly graded image into the store.
type CreateCommand struct {
	BatchID        string
	ImageURL       string
	ImageSize      string
	Smoothness     int
	Shininess      int
	Confidence     float64
	ModelVersion   string
	ProcessingTime time.Duration
	Technician     string
	Station        string
	BatchInfo      string
}

// ReviewCommand sets technician grades on a record. When Version is set the
// update only applies if it matches the stored version.
type ReviewCommand struct {
	Smoothness int
	Shininess  int
	ReviewedBy string
	Version    *int
}

// NewID returns the record id for a batch at the given instant.
func NewID(batchID string, now time.Time) string {
	return fmt.Sprintf("grade-%s-%d", batchID, now.UnixMilli())
}

// DefaultBatchInfo labels a record with the UTC date it was created.
func DefaultBatchInfo(now time.Time) string {
	return "Batch-" + now.UTC().Format("2006-01-02")
}

// NewRecord builds a pending record from cmd, filling in defaults.
func NewRecord(cmd CreateCommand, now time.Time) Record {
	station := cmd.Station
	if station == "" {
		station = DefaultStation
	}
	batchInfo := cmd.BatchInfo
	if batchInfo == "" {
		batchInfo = DefaultBatchInfo(now)
	}
	technician := cmd.Technician
	if technician == "" {
		technician = DefaultTechnician
	}
	imageSize := cmd.ImageSize
	if imageSize == "" {
		imageSize = "unknown"
	}

	return Record{
		ID:           NewID(cmd.BatchID, now),
		BatchID:      cmd.BatchID,
		DocumentType: DocumentType,
		ImageMetadata: ImageMetadata{
			OriginalImageURL: cmd.ImageURL,
			ImageSize:        imageSize,
			CaptureTimestamp: now,
		},
		AIGrading: AIGrading{
			Smoothness:       cmd.Smoothness,
			Shininess:        cmd.Shininess,
			Combined:         cmd.Smoothness + cmd.Shininess,
			Confidence:       cmd.Confidence,
			ModelVersion:     cmd.ModelVersion,
			ProcessingTimeMs: cmd.ProcessingTime.Milliseconds(),
		},
		Review: Review{
			Status:     StatusPending,
			Technician: technician,
			Station:    station,
			BatchInfo:  batchInfo,
		},
		Timestamps: Timestamps{CreatedAt: now, UpdatedAt: now},
		Version:    1,
	}
}
