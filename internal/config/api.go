package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/grader/pkg/formatting"
	"github.com/JaimeStill/grader/pkg/middleware"
	"github.com/JaimeStill/grader/pkg/openapi"
	"github.com/JaimeStill/grader/pkg/pagination"
)

const (
	EnvAPIBasePath     = "GRADER_API_BASE_PATH"
	EnvAPIMaxImageSize = "GRADER_API_MAX_IMAGE_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "GRADER_CORS_ENABLED",
	Origins:          "GRADER_CORS_ORIGINS",
	AllowedMethods:   "GRADER_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "GRADER_CORS_ALLOWED_HEADERS",
	AllowCredentials: "GRADER_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "GRADER_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "GRADER_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "GRADER_PAGINATION_MAX_PAGE_SIZE",
}

var recordsEnv = &pagination.ConfigEnv{
	DefaultPageSize: "GRADER_RECORDS_DEFAULT_LIMIT",
	MaxPageSize:     "GRADER_RECORDS_MAX_LIMIT",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "GRADER_OPENAPI_TITLE",
	Description: "GRADER_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, CORS, pagination, and upload settings.
// Records bounds the history listing limit (default 10, maximum 1000).
type APIConfig struct {
	BasePath     string                `toml:"base_path"`
	MaxImageSize string                `toml:"max_image_size"`
	CORS         middleware.CORSConfig `toml:"cors"`
	Pagination   pagination.Config     `toml:"pagination"`
	Records      pagination.Config     `toml:"records"`
	OpenAPI      openapi.Config        `toml:"openapi"`
}

// MaxImageSizeBytes returns MaxImageSize in bytes.
func (c *APIConfig) MaxImageSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxImageSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if size, err := formatting.ParseBytes(c.MaxImageSize); err != nil || size <= 0 {
		return fmt.Errorf("invalid max_image_size %q", c.MaxImageSize)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Records.Finalize(recordsEnv); err != nil {
		return fmt.Errorf("records: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxImageSize != "" {
		c.MaxImageSize = overlay.MaxImageSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.Records.Merge(&overlay.Records)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxImageSize == "" {
		c.MaxImageSize = "6MB"
	}
	if c.Records.DefaultPageSize == 0 {
		c.Records.DefaultPageSize = 10
	}
	if c.Records.MaxPageSize == 0 {
		c.Records.MaxPageSize = 1000
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxImageSize); v != "" {
		c.MaxImageSize = v
	}
}
