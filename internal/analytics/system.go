package analytics

import (
	"context"
	"time"
)

// Query selects the records to summarize. An empty BatchID covers the most
// recent Limit records across all batches.
type Query struct {
	BatchID string
	Limit   int
	Bucket  time.Duration
}

// System defines the analytics contract.
type System interface {
	Handler() *Handler
	Summarize(ctx context.Context, q Query) (*Summary, error)
}
