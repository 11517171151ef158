package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JaimeStill/grader/internal/auth"
	"github.com/JaimeStill/grader/internal/records"
	"github.com/JaimeStill/grader/pkg/pagination"
)

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grader_analytics_cache_total",
		Help: "Analytics summary cache lookups by result.",
	},
	[]string{"result"},
)

// Config tunes summary caching and bucketing.
type Config struct {
	CacheTTL  time.Duration
	CacheSize int
	Bucket    time.Duration
}

type service struct {
	records records.System
	auth    *auth.Authenticator
	cache   *expirable.LRU[string, *Summary]
	bucket  time.Duration
	limits  pagination.Config
	logger  *slog.Logger
}

// New creates the analytics system. Summaries are cached per query for
// cfg.CacheTTL; limits bounds the record window for cross-batch queries.
func New(
	store records.System,
	authn *auth.Authenticator,
	cfg Config,
	limits pagination.Config,
	logger *slog.Logger,
) System {
	return &service{
		records: store,
		auth:    authn,
		cache:   expirable.NewLRU[string, *Summary](cfg.CacheSize, nil, cfg.CacheTTL),
		bucket:  cfg.Bucket,
		limits:  limits,
		logger:  logger.With("system", "analytics"),
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.auth, s.limits, s.logger)
}

func (s *service) Summarize(ctx context.Context, q Query) (*Summary, error) {
	if q.Bucket <= 0 {
		q.Bucket = s.bucket
	}
	if q.BatchID == "" {
		q.Limit = s.limits.Clamp(q.Limit)
	} else {
		q.Limit = 0
	}

	key := cacheKey(q)
	if cached, ok := s.cache.Get(key); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	cacheLookups.WithLabelValues("miss").Inc()

	var (
		recs []records.Record
		err  error
	)
	if q.BatchID != "" {
		recs, err = s.records.ListByBatch(ctx, q.BatchID)
	} else {
		recs, err = s.records.ListRecent(ctx, q.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	summary := Summarize(recs, q.Bucket)
	s.cache.Add(key, &summary)

	s.logger.Debug("summary computed",
		"batch_id", q.BatchID,
		"records", summary.Total,
		"buckets", len(summary.Series),
	)
	return &summary, nil
}

func cacheKey(q Query) string {
	return fmt.Sprintf("%s|%d|%s", q.BatchID, q.Limit, q.Bucket)
}
