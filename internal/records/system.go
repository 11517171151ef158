package records

import (
	"context"

	"github.com/JaimeStill/grader/pkg/pagination"
)

// System defines the record store contract.
type System interface {
	Handler() *Handler

	Create(ctx context.Context, cmd CreateCommand) (*Record, error)
	Find(ctx context.Context, id, batchID string) (*Record, error)
	UpdateReview(ctx context.Context, id, batchID string, cmd ReviewCommand) (*Record, error)
	ListByBatch(ctx context.Context, batchID string) ([]Record, error)
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	Search(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record], error)
}
