package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvAnalyticsCacheTTL  = "GRADER_ANALYTICS_CACHE_TTL"
	EnvAnalyticsCacheSize = "GRADER_ANALYTICS_CACHE_SIZE"
	EnvAnalyticsBucket    = "GRADER_ANALYTICS_BUCKET"
)

// AnalyticsConfig holds summary caching and bucketing parameters.
type AnalyticsConfig struct {
	CacheTTL  string `toml:"cache_ttl"`
	CacheSize int    `toml:"cache_size"`
	Bucket    string `toml:"bucket"`
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c *AnalyticsConfig) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

// BucketDuration returns Bucket as a time.Duration.
func (c *AnalyticsConfig) BucketDuration() time.Duration {
	d, _ := time.ParseDuration(c.Bucket)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AnalyticsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AnalyticsConfig) Merge(overlay *AnalyticsConfig) {
	if overlay.CacheTTL != "" {
		c.CacheTTL = overlay.CacheTTL
	}
	if overlay.CacheSize != 0 {
		c.CacheSize = overlay.CacheSize
	}
	if overlay.Bucket != "" {
		c.Bucket = overlay.Bucket
	}
}

func (c *AnalyticsConfig) loadDefaults() {
	if c.CacheTTL == "" {
		c.CacheTTL = "30s"
	}
	if c.CacheSize == 0 {
		c.CacheSize = 128
	}
	if c.Bucket == "" {
		c.Bucket = "1h"
	}
}

func (c *AnalyticsConfig) loadEnv() {
	if v := os.Getenv(EnvAnalyticsCacheTTL); v != "" {
		c.CacheTTL = v
	}
	if v := os.Getenv(EnvAnalyticsCacheSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CacheSize = n
		}
	}
	if v := os.Getenv(EnvAnalyticsBucket); v != "" {
		c.Bucket = v
	}
}

func (c *AnalyticsConfig) validate() error {
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl: %w", err)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache_size must be positive")
	}
	d, err := time.ParseDuration(c.Bucket)
	if err != nil {
		return fmt.Errorf("invalid bucket: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("bucket must be positive")
	}
	return nil
}
