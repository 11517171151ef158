package grading

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	visionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grader_vision_requests_total",
			Help: "Vision model calls by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	visionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grader_vision_duration_seconds",
			Help:    "Vision model call latency.",
			Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"provider"},
	)

	gradings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grader_gradings_total",
			Help: "Grading submissions by result.",
		},
		[]string{"result"},
	)
)

func observeVision(provider string, d time.Duration, err error) {
	visionDuration.WithLabelValues(provider).Observe(d.Seconds())
	visionRequests.WithLabelValues(provider, outcomeLabel(err)).Inc()
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(classify(err), ErrTimeout):
		return "timeout"
	case errors.Is(classify(err), ErrRateLimited):
		return "rate_limited"
	case errors.Is(classify(err), ErrAuthFailure):
		return "auth"
	case errors.Is(classify(err), ErrEmptyResponse):
		return "empty"
	default:
		return "error"
	}
}
