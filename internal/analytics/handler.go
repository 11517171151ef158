package analytics

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/grader/internal/auth"
	"github.com/JaimeStill/grader/internal/records"
	"github.com/JaimeStill/grader/pkg/handlers"
	"github.com/JaimeStill/grader/pkg/pagination"
	"github.com/JaimeStill/grader/pkg/routes"
)

// Handler serves grading analytics.
type Handler struct {
	sys    System
	auth   *auth.Authenticator
	limits pagination.Config
	logger *slog.Logger
}

func NewHandler(sys System, authn *auth.Authenticator, limits pagination.Config, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		auth:   authn,
		limits: limits,
		logger: logger.With("handler", "analytics"),
	}
}

// Routes returns the analytics route group. Authentication is required.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:     "/analytics",
		Middleware: []func(http.Handler) http.Handler{h.auth.Required()},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Summary},
		},
	}
}

// Summary accepts batchId (or blkNumber), limit and bucket query parameters.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	q := Query{BatchID: values.Get("batchId")}
	if q.BatchID == "" {
		q.BatchID = values.Get("blkNumber")
	}

	limit, err := h.limits.ParseLimit(values.Get("limit"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	q.Limit = limit

	if raw := values.Get("bucket"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < time.Minute {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid bucket %q: use a duration of at least 1m", raw))
			return
		}
		q.Bucket = d
	}

	summary, err := h.sys.Summarize(r.Context(), q)
	if err != nil {
		handlers.RespondMessage(w, h.logger, records.MapHTTPStatus(err), "Failed to load analytics", err)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=30")
	handlers.RespondJSON(w, http.StatusOK, summary)
}
