package records

import (
	"net/url"

	"github.com/JaimeStill/grader/pkg/query"
	"github.com/JaimeStill/grader/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "grading_records", "g").
	Project("id", "id").
	Project("batch_id", "batchId").
	Project("document_type", "documentType").
	Project("original_image_url", "originalImageUrl").
	Project("image_size", "imageSize").
	Project("capture_timestamp", "captureTimestamp").
	Project("ai_smoothness", "aiSmoothness").
	Project("ai_shininess", "aiShininess").
	Project("ai_combined", "aiCombined").
	Project("ai_confidence", "confidence").
	Project("model_version", "modelVersion").
	Project("processing_time_ms", "processingTimeMs").
	Project("status", "status").
	Project("technician", "technician").
	Project("station", "station").
	Project("batch_info", "batchInfo").
	Project("technician_smoothness", "technicianSmoothness").
	Project("technician_shininess", "technicianShininess").
	Project("technician_combined", "technicianCombined").
	Project("reviewed_by", "reviewedBy").
	Project("created_at", "createdAt").
	Project("updated_at", "updatedAt").
	Project("version", "version")

var defaultSort = query.SortField{
	Field:      "createdAt",
	Descending: true,
}

// Filters narrows record searches. Nil fields are ignored. Technician
// matches a substring; the rest match exactly.
type Filters struct {
	BatchID    *string `json:"batchId,omitempty"`
	Status     *string `json:"status,omitempty"`
	Station    *string `json:"station,omitempty"`
	Technician *string `json:"technician,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("batchId", f.BatchID).
		WhereEquals("status", f.Status).
		WhereEquals("station", f.Station).
		WhereContains("technician", f.Technician)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// blkNumber is accepted in place of batchId.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if b := batchParam(values); b != "" {
		f.BatchID = &b
	}
	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if s := values.Get("station"); s != "" {
		f.Station = &s
	}
	if t := values.Get("technician"); t != "" {
		f.Technician = &t
	}

	return f
}

func batchParam(values url.Values) string {
	if b := values.Get("batchId"); b != "" {
		return b
	}
	return values.Get("blkNumber")
}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.BatchID,
		&r.DocumentType,
		&r.ImageMetadata.OriginalImageURL,
		&r.ImageMetadata.ImageSize,
		&r.ImageMetadata.CaptureTimestamp,
		&r.AIGrading.Smoothness,
		&r.AIGrading.Shininess,
		&r.AIGrading.Combined,
		&r.AIGrading.Confidence,
		&r.AIGrading.ModelVersion,
		&r.AIGrading.ProcessingTimeMs,
		&r.Review.Status,
		&r.Review.Technician,
		&r.Review.Station,
		&r.Review.BatchInfo,
		&r.Review.TechnicianSmoothness,
		&r.Review.TechnicianShininess,
		&r.Review.TechnicianCombined,
		&r.Review.ReviewedBy,
		&r.Timestamps.CreatedAt,
		&r.Timestamps.UpdatedAt,
		&r.Version,
	)
	return r, err
}
