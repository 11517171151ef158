package records

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", fmt.Errorf("select: %w", sql.ErrNoRows), ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrDuplicate},
		{"check violation", &pgconn.PgError{Code: "23514"}, ErrInvalidReview},
		{"conflict passes through", ErrConflict, ErrConflict},
		{"connection failure", &pgconn.PgError{Code: "08006"}, ErrBackendUnavailable},
		{"unknown", errors.New("driver: bad connection"), ErrBackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("mapError = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("mapError = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("driver errors do not leak", func(t *testing.T) {
		got := mapError(&pgconn.PgError{Code: "08006"})
		var pgErr *pgconn.PgError
		if errors.As(got, &pgErr) {
			t.Error("pgconn.PgError reachable through mapped error")
		}
	})
}
