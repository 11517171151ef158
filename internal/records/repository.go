package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/grader/internal/auth"
	"github.com/JaimeStill/grader/pkg/pagination"
	"github.com/JaimeStill/grader/pkg/query"
	"github.com/JaimeStill/grader/pkg/repository"
)

const insertQ = `
	INSERT INTO public.grading_records AS g (
		id, batch_id, document_type,
		original_image_url, image_size, capture_timestamp,
		ai_smoothness, ai_shininess, ai_combined, ai_confidence,
		model_version, processing_time_ms,
		status, technician, station, batch_info,
		created_at, updated_at, version
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	RETURNING `

const reviewQ = `
	UPDATE public.grading_records AS g
	SET status = $1,
		technician_smoothness = $2,
		technician_shininess = $3,
		technician_combined = $4,
		reviewed_by = $5,
		updated_at = $6,
		version = $7
	WHERE g.batch_id = $8 AND g.id = $9
	RETURNING `

type repo struct {
	db         *sql.DB
	auth       *auth.Authenticator
	logger     *slog.Logger
	pagination pagination.Config
	limits     pagination.Config
	now        func() time.Time
}

// New creates the PostgreSQL record store. limits bounds ListRecent and the
// history endpoint; pagination bounds Search.
func New(
	db *sql.DB,
	authn *auth.Authenticator,
	logger *slog.Logger,
	pagination pagination.Config,
	limits pagination.Config,
) System {
	return &repo{
		db:         db,
		auth:       authn,
		logger:     logger.With("system", "records"),
		pagination: pagination,
		limits:     limits,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.auth, r.logger, r.pagination, r.limits)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Record, error) {
	created, err := createRestamped(r.now, cmd, func(rec Record) (Record, error) {
		return r.insert(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("record created",
		"id", created.ID,
		"batch_id", created.BatchID,
		"combined", created.AIGrading.Combined,
	)
	return &created, nil
}

// createRestamped inserts the record for cmd. Ids have millisecond
// resolution, so an id collision within a batch is retried once with the
// timestamp moved past the colliding millisecond.
func createRestamped(now func() time.Time, cmd CreateCommand, insert func(Record) (Record, error)) (Record, error) {
	stamp := now()
	created, err := insert(NewRecord(cmd, stamp))
	if !errors.Is(err, ErrDuplicate) {
		return created, err
	}

	next := now()
	if next.UnixMilli() <= stamp.UnixMilli() {
		next = stamp.Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return insert(NewRecord(cmd, next))
}

func (r *repo) insert(ctx context.Context, rec Record) (Record, error) {
	args := []any{
		rec.ID,
		rec.BatchID,
		rec.DocumentType,
		rec.ImageMetadata.OriginalImageURL,
		rec.ImageMetadata.ImageSize,
		rec.ImageMetadata.CaptureTimestamp,
		rec.AIGrading.Smoothness,
		rec.AIGrading.Shininess,
		rec.AIGrading.Combined,
		rec.AIGrading.Confidence,
		rec.AIGrading.ModelVersion,
		rec.AIGrading.ProcessingTimeMs,
		rec.Review.Status,
		rec.Review.Technician,
		rec.Review.Station,
		rec.Review.BatchInfo,
		rec.Timestamps.CreatedAt,
		rec.Timestamps.UpdatedAt,
		rec.Version,
	}

	created, err := repository.QueryOne(ctx, r.db, insertQ+projection.Columns(), args, scanRecord)
	if err != nil {
		return Record{}, mapError(fmt.Errorf("insert record: %w", err))
	}
	return created, nil
}

func (r *repo) Find(ctx context.Context, id, batchID string) (*Record, error) {
	q, args := keyed(id, batchID).BuildSingleOrNull()

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, mapError(err)
	}
	return &rec, nil
}

func (r *repo) UpdateReview(ctx context.Context, id, batchID string, cmd ReviewCommand) (*Record, error) {
	if !validScore(cmd.Smoothness) || !validScore(cmd.Shininess) {
		return nil, ErrInvalidReview
	}

	lockQ, lockArgs := keyed(id, batchID).BuildSingleOrNull()
	lockQ += " FOR UPDATE"

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record, error) {
		current, err := repository.QueryOne(ctx, tx, lockQ, lockArgs, scanRecord)
		if err != nil {
			return Record{}, err
		}

		if cmd.Version != nil && *cmd.Version != current.Version {
			return Record{}, ErrConflict
		}

		current.Apply(cmd, r.now())

		return repository.QueryOne(ctx, tx, reviewQ+projection.Columns(), []any{
			current.Review.Status,
			current.Review.TechnicianSmoothness,
			current.Review.TechnicianShininess,
			current.Review.TechnicianCombined,
			current.Review.ReviewedBy,
			current.Timestamps.UpdatedAt,
			current.Version,
			batchID,
			id,
		}, scanRecord)
	})

	if err != nil {
		return nil, mapError(err)
	}

	r.logger.Info("review saved",
		"id", rec.ID,
		"batch_id", rec.BatchID,
		"technician_combined", *rec.Review.TechnicianCombined,
		"version", rec.Version,
	)
	return &rec, nil
}

func (r *repo) ListByBatch(ctx context.Context, batchID string) ([]Record, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("batchId", batchID).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, mapError(fmt.Errorf("query batch %s: %w", batchID, err))
	}
	return items, nil
}

func (r *repo) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("documentType", DocumentType).
		BuildLimit(r.limits.Clamp(limit))

	items, err := repository.QueryMany(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, mapError(fmt.Errorf("query recent records: %w", err))
	}
	return items, nil
}

func (r *repo) Search(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "batchId", "station", "technician", "batchInfo")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, mapError(fmt.Errorf("count records: %w", err))
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, mapError(fmt.Errorf("query records: %w", err))
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func keyed(id, batchID string) *query.Builder {
	return query.
		NewBuilder(projection).
		WhereEquals("batchId", batchID).
		WhereEquals("id", id)
}

func validScore(n int) bool {
	return n >= 0 && n <= 5
}
