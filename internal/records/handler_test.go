package records_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/grader/internal/auth/authtest"
	"github.com/JaimeStill/grader/internal/records"
	"github.com/JaimeStill/grader/pkg/pagination"
	"github.com/JaimeStill/grader/pkg/routes"
)

type mockSystem struct {
	findFn         func(ctx context.Context, id, batchID string) (*records.Record, error)
	updateReviewFn func(ctx context.Context, id, batchID string, cmd records.ReviewCommand) (*records.Record, error)
	listByBatchFn  func(ctx context.Context, batchID string) ([]records.Record, error)
	listRecentFn   func(ctx context.Context, limit int) ([]records.Record, error)
	searchFn       func(ctx context.Context, page pagination.PageRequest, filters records.Filters) (*pagination.PageResult[records.Record], error)
}

func (m *mockSystem) Handler() *records.Handler { return nil }

func (m *mockSystem) Create(ctx context.Context, cmd records.CreateCommand) (*records.Record, error) {
	rec := records.NewRecord(cmd, created)
	return &rec, nil
}

func (m *mockSystem) Find(ctx context.Context, id, batchID string) (*records.Record, error) {
	return m.findFn(ctx, id, batchID)
}

func (m *mockSystem) UpdateReview(ctx context.Context, id, batchID string, cmd records.ReviewCommand) (*records.Record, error) {
	return m.updateReviewFn(ctx, id, batchID, cmd)
}

func (m *mockSystem) ListByBatch(ctx context.Context, batchID string) ([]records.Record, error) {
	return m.listByBatchFn(ctx, batchID)
}

func (m *mockSystem) ListRecent(ctx context.Context, limit int) ([]records.Record, error) {
	return m.listRecentFn(ctx, limit)
}

func (m *mockSystem) Search(ctx context.Context, page pagination.PageRequest, filters records.Filters) (*pagination.PageResult[records.Record], error) {
	return m.searchFn(ctx, page, filters)
}


type harness struct {
	mux    *http.ServeMux
	bearer string
}

func setup(t *testing.T, sys records.System) *harness {
	t.Helper()

	p := authtest.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := records.NewHandler(
		sys, p.Auth, logger,
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		pagination.Config{DefaultPageSize: 10, MaxPageSize: 1000},
	)

	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return &harness{mux: mux, bearer: p.Bearer(t, "tech@farm.example")}
}

func (h *harness) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if authed {
		req.Header.Set("Authorization", h.bearer)
	}
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

func pendingRecord() *records.Record {
	rec := records.NewRecord(records.CreateCommand{BatchID: "BLK1", Smoothness: 3, Shininess: 4}, created)
	return &rec
}

func reviewed(cmd records.ReviewCommand) *records.Record {
	rec := pendingRecord()
	rec.Apply(cmd, created)
	return rec
}

func TestRoutesRequireAuthentication(t *testing.T) {
	h := setup(t, &mockSystem{})

	paths := []struct{ method, path, body string }{
		{"POST", "/reviews", `{}`},
		{"POST", "/reviews/accept", `{}`},
		{"GET", "/reviews", ""},
		{"GET", "/reviews/BLK1/grade-BLK1-1", ""},
		{"GET", "/records/search", ""},
		{"POST", "/records/search", `{}`},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := h.do(p.method, p.path, p.body, false)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestReview(t *testing.T) {
	var got records.ReviewCommand
	var gotID, gotBatch string

	sys := &mockSystem{
		updateReviewFn: func(_ context.Context, id, batchID string, cmd records.ReviewCommand) (*records.Record, error) {
			gotID, gotBatch, got = id, batchID, cmd
			return reviewed(cmd), nil
		},
	}
	h := setup(t, sys)

	rec := h.do("POST", "/reviews", `{"documentId":"grade-BLK1-1","batchId":"BLK1","smoothness":3,"shininess":4}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp records.ReviewResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Record.Review.Status != records.StatusCompleted || *resp.Record.Review.TechnicianCombined != 7 {
		t.Errorf("response = %+v", resp)
	}
	if gotID != "grade-BLK1-1" || gotBatch != "BLK1" {
		t.Errorf("key = %s/%s", gotBatch, gotID)
	}
	if got.ReviewedBy != "tech@farm.example" || got.Version != nil {
		t.Errorf("cmd = %+v", got)
	}
}

func TestReviewLegacyBatchAndVersion(t *testing.T) {
	var got records.ReviewCommand
	var gotBatch string

	sys := &mockSystem{
		updateReviewFn: func(_ context.Context, _, batchID string, cmd records.ReviewCommand) (*records.Record, error) {
			gotBatch, got = batchID, cmd
			return reviewed(cmd), nil
		},
	}
	h := setup(t, sys)

	rec := h.do("POST", "/reviews", `{"documentId":"d","blkNumber":"BLK9","smoothness":0,"shininess":5,"version":4}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotBatch != "BLK9" {
		t.Errorf("batch = %s, want BLK9", gotBatch)
	}
	if got.Version == nil || *got.Version != 4 || got.Smoothness != 0 || got.Shininess != 5 {
		t.Errorf("cmd = %+v", got)
	}
}

func TestReviewValidation(t *testing.T) {
	sys := &mockSystem{
		updateReviewFn: func(context.Context, string, string, records.ReviewCommand) (*records.Record, error) {
			t.Fatal("store should not be called")
			return nil, nil
		},
	}
	h := setup(t, sys)

	tests := []struct {
		name string
		body string
	}{
		{"missing document", `{"batchId":"BLK1","smoothness":3,"shininess":4}`},
		{"missing batch", `{"documentId":"d","smoothness":3,"shininess":4}`},
		{"missing smoothness", `{"documentId":"d","batchId":"BLK1","shininess":4}`},
		{"string score", `{"documentId":"d","batchId":"BLK1","smoothness":"3","shininess":4}`},
		{"fractional score", `{"documentId":"d","batchId":"BLK1","smoothness":3.5,"shininess":4}`},
		{"above range", `{"documentId":"d","batchId":"BLK1","smoothness":6,"shininess":4}`},
		{"below range", `{"documentId":"d","batchId":"BLK1","smoothness":3,"shininess":-1}`},
		{"malformed", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do("POST", "/reviews", tt.body, true)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestReviewStoreErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", records.ErrNotFound, http.StatusNotFound, "grading record not found"},
		{"conflict", records.ErrConflict, http.StatusConflict, "modified by another review"},
		{"backend", records.ErrBackendUnavailable, http.StatusInternalServerError, "Failed to update technician grades"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t, &mockSystem{
				updateReviewFn: func(context.Context, string, string, records.ReviewCommand) (*records.Record, error) {
					return nil, tt.err
				},
			})

			rec := h.do("POST", "/reviews", `{"documentId":"d","batchId":"BLK1","smoothness":3,"shininess":4,"version":1}`, true)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAccept(t *testing.T) {
	var got records.ReviewCommand
	sys := &mockSystem{
		findFn: func(_ context.Context, id, batchID string) (*records.Record, error) {
			return pendingRecord(), nil
		},
		updateReviewFn: func(_ context.Context, _, _ string, cmd records.ReviewCommand) (*records.Record, error) {
			got = cmd
			return reviewed(cmd), nil
		},
	}
	h := setup(t, sys)

	rec := h.do("POST", "/reviews/accept", `{"documentId":"d","batchId":"BLK1","version":1}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got.Smoothness != 3 || got.Shininess != 4 {
		t.Errorf("accepted scores = %d/%d, want AI 3/4", got.Smoothness, got.Shininess)
	}

	t.Run("missing record", func(t *testing.T) {
		sys.findFn = func(context.Context, string, string) (*records.Record, error) {
			return nil, records.ErrNotFound
		}
		rec := h.do("POST", "/reviews/accept", `{"documentId":"d","batchId":"BLK1"}`, true)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := h.do("POST", "/reviews/accept", `{"documentId":"d"}`, true)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHistory(t *testing.T) {
	var gotBatch string
	var gotLimit int

	sys := &mockSystem{
		listByBatchFn: func(_ context.Context, batchID string) ([]records.Record, error) {
			gotBatch = batchID
			return []records.Record{*pendingRecord()}, nil
		},
		listRecentFn: func(_ context.Context, limit int) ([]records.Record, error) {
			gotLimit = limit
			return []records.Record{}, nil
		},
	}
	h := setup(t, sys)

	tests := []struct {
		name      string
		path      string
		wantBatch string
		wantLimit int
		wantCount int
	}{
		{"by batch", "/reviews?batchId=BLK1", "BLK1", 0, 1},
		{"by legacy batch", "/reviews?blkNumber=BLK2", "BLK2", 0, 1},
		{"recent default", "/reviews", "", 10, 0},
		{"recent limit", "/reviews?limit=25", "", 25, 0},
		{"recent capped", "/reviews?limit=5000", "", 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotBatch, gotLimit = "", 0

			rec := h.do("GET", tt.path, "", true)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}

			var resp records.HistoryResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Records == nil || len(resp.Records) != tt.wantCount {
				t.Errorf("records = %v, want %d", resp.Records, tt.wantCount)
			}
			if gotBatch != tt.wantBatch || gotLimit != tt.wantLimit {
				t.Errorf("batch=%q limit=%d, want %q/%d", gotBatch, gotLimit, tt.wantBatch, tt.wantLimit)
			}
		})
	}

	t.Run("invalid limit", func(t *testing.T) {
		rec := h.do("GET", "/reviews?limit=ten", "", true)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestFind(t *testing.T) {
	sys := &mockSystem{
		findFn: func(_ context.Context, id, batchID string) (*records.Record, error) {
			if id != "grade-BLK1-1741944600000" || batchID != "BLK1" {
				return nil, records.ErrNotFound
			}
			return pendingRecord(), nil
		},
	}
	h := setup(t, sys)

	if rec := h.do("GET", "/reviews/BLK1/grade-BLK1-1741944600000", "", true); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec := h.do("GET", "/reviews/BLK2/grade-BLK1-1741944600000", "", true); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSearch(t *testing.T) {
	var gotPage pagination.PageRequest
	var gotFilters records.Filters

	sys := &mockSystem{
		searchFn: func(_ context.Context, page pagination.PageRequest, filters records.Filters) (*pagination.PageResult[records.Record], error) {
			gotPage, gotFilters = page, filters
			result := pagination.NewPageResult([]records.Record{*pendingRecord()}, 1, page.Page, page.PageSize)
			return &result, nil
		},
	}
	h := setup(t, sys)

	t.Run("query", func(t *testing.T) {
		rec := h.do("GET", "/records/search?status=pending&station=line-3&page=2&pageSize=5", "", true)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("page = %+v", gotPage)
		}
		if gotFilters.Status == nil || *gotFilters.Status != "pending" || *gotFilters.Station != "line-3" {
			t.Errorf("filters = %+v", gotFilters)
		}
	})

	t.Run("body", func(t *testing.T) {
		rec := h.do("POST", "/records/search", `{"pageSize":500,"technician":"tech@farm.example","sort":"-createdAt"}`, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if gotPage.PageSize != 100 || gotPage.Page != 1 {
			t.Errorf("normalized page = %+v", gotPage)
		}
		if gotFilters.Technician == nil || *gotFilters.Technician != "tech@farm.example" {
			t.Errorf("filters = %+v", gotFilters)
		}
		if len(gotPage.Sort) != 1 || !gotPage.Sort[0].Descending {
			t.Errorf("sort = %v", gotPage.Sort)
		}
	})
}
