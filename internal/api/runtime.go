package api

import (
	"github.com/JaimeStill/grader/internal/config"
	"github.com/JaimeStill/grader/internal/infrastructure"
	"github.com/JaimeStill/grader/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination   pagination.Config
	Records      pagination.Config
	MaxImageSize int64
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Vision:    infra.Vision,
			Auth:      infra.Auth,
		},
		Pagination:   cfg.API.Pagination,
		Records:      cfg.API.Records,
		MaxImageSize: cfg.API.MaxImageSizeBytes(),
	}
}
