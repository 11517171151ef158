package api

import (
	"github.com/JaimeStill/grader/internal/analytics"
	"github.com/JaimeStill/grader/internal/config"
	"github.com/JaimeStill/grader/internal/grading"
	"github.com/JaimeStill/grader/internal/intake"
	"github.com/JaimeStill/grader/internal/records"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Records   records.System
	Grading   grading.System
	Analytics analytics.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.AnalyticsConfig) *Domain {
	recordsSystem := records.New(
		runtime.Database.Connection(),
		runtime.Auth,
		runtime.Logger,
		runtime.Pagination,
		runtime.Records,
	)

	gradingSystem := grading.New(
		intake.NewValidator(runtime.MaxImageSize),
		grading.NewGrader(runtime.Vision, runtime.Logger),
		grading.NewImageStore(runtime.Storage, runtime.Logger),
		recordsSystem,
		runtime.Auth,
		runtime.Logger,
	)

	analyticsSystem := analytics.New(
		recordsSystem,
		runtime.Auth,
		analytics.Config{
			CacheTTL:  cfg.CacheTTLDuration(),
			CacheSize: cfg.CacheSize,
			Bucket:    cfg.BucketDuration(),
		},
		runtime.Records,
		runtime.Logger,
	)

	return &Domain{
		Records:   recordsSystem,
		Grading:   gradingSystem,
		Analytics: analyticsSystem,
	}
}
