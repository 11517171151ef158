package records

import "time"

// Review is the technician half of a record. Status is completed exactly
// when both technician scores are present.
type Review struct {
	Status               string  `json:"status"`
	Technician           string  `json:"technician"`
	Station              string  `json:"station"`
	BatchInfo            string  `json:"batchInfo"`
	TechnicianSmoothness *int    `json:"technicianSmoothness"`
	TechnicianShininess  *int    `json:"technicianShininess"`
	TechnicianCombined   *int    `json:"technicianCombined"`
	ReviewedBy           *string `json:"reviewedBy,omitempty"`
}

// Completed reports whether the technician has graded the record.
func (r Review) Completed() bool {
	return r.TechnicianSmoothness != nil && r.TechnicianShininess != nil
}

// ApplyReview records technician grades, moving the review to completed.
// Applying again overwrites the previous grades.
func ApplyReview(r *Review, smoothness, shininess int) {
	combined := smoothness + shininess
	r.TechnicianSmoothness = &smoothness
	r.TechnicianShininess = &shininess
	r.TechnicianCombined = &combined
	r.Status = StatusCompleted
}

// Apply runs cmd against rec. The caller has already checked the version.
func (rec *Record) Apply(cmd ReviewCommand, now time.Time) {
	ApplyReview(&rec.Review, cmd.Smoothness, cmd.Shininess)
	if cmd.ReviewedBy != "" {
		by := cmd.ReviewedBy
		rec.Review.ReviewedBy = &by
	}
	rec.Timestamps.UpdatedAt = now
	rec.Version++
}

// AcceptCommand builds a review that confirms the AI grades as-is.
func (rec *Record) AcceptCommand(reviewedBy string, version *int) ReviewCommand {
	return ReviewCommand{
		Smoothness: rec.AIGrading.Smoothness,
		Shininess:  rec.AIGrading.Shininess,
		ReviewedBy: reviewedBy,
		Version:    version,
	}
}
