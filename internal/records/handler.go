package records

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/grader/internal/auth"
	"github.com/JaimeStill/grader/pkg/handlers"
	"github.com/JaimeStill/grader/pkg/pagination"
	"github.com/JaimeStill/grader/pkg/routes"
)

const (
	msgMissingReview = "Missing required fields: documentId, batchId, smoothness, shininess"
	msgMissingAccept = "Missing required fields: documentId, batchId"
)

// Handler provides the review and history endpoints.
type Handler struct {
	sys        System
	auth       *auth.Authenticator
	logger     *slog.Logger
	pagination pagination.Config
	limits     pagination.Config
}

// ReviewRequest is the body of POST /reviews. blkNumber is the legacy name
// for batchId.
type ReviewRequest struct {
	DocumentID string `json:"documentId"`
	BatchID    string `json:"batchId"`
	BlkNumber  string `json:"blkNumber"`
	Smoothness *int   `json:"smoothness"`
	Shininess  *int   `json:"shininess"`
	Version    *int   `json:"version,omitempty"`
}

// AcceptRequest is the body of POST /reviews/accept.
type AcceptRequest struct {
	DocumentID string `json:"documentId"`
	BatchID    string `json:"batchId"`
	BlkNumber  string `json:"blkNumber"`
	Version    *int   `json:"version,omitempty"`
}

// ReviewResponse is returned after a successful review.
type ReviewResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Record  *Record `json:"record"`
}

// HistoryResponse wraps a record listing.
type HistoryResponse struct {
	Records []Record `json:"records"`
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

func NewHandler(
	sys System,
	authn *auth.Authenticator,
	logger *slog.Logger,
	pagination pagination.Config,
	limits pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		auth:       authn,
		logger:     logger.With("handler", "records"),
		pagination: pagination,
		limits:     limits,
	}
}

// Routes returns the review and record routes. All require authentication.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Middleware: []func(http.Handler) http.Handler{h.auth.Required()},
		Children: []routes.Group{
			{
				Prefix: "/reviews",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "", Handler: h.Review},
					{Method: "POST", Pattern: "/accept", Handler: h.Accept},
					{Method: "GET", Pattern: "", Handler: h.History},
					{Method: "GET", Pattern: "/{batchId}/{id}", Handler: h.Find},
				},
			},
			{
				Prefix: "/records",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/search", Handler: h.List},
					{Method: "POST", Pattern: "/search", Handler: h.Search},
				},
			},
		},
	}
}

// Review saves technician grades for a record.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondMessage(w, h.logger, http.StatusBadRequest, msgMissingReview, err)
		return
	}

	batchID := firstNonEmpty(req.BatchID, req.BlkNumber)
	if req.DocumentID == "" || batchID == "" || req.Smoothness == nil || req.Shininess == nil {
		handlers.RespondMessage(w, h.logger, http.StatusBadRequest, msgMissingReview, nil)
		return
	}

	if !validScore(*req.Smoothness) || !validScore(*req.Shininess) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidReview)
		return
	}

	rec, err := h.sys.UpdateReview(r.Context(), req.DocumentID, batchID, ReviewCommand{
		Smoothness: *req.Smoothness,
		Shininess:  *req.Shininess,
		ReviewedBy: principal(r),
		Version:    req.Version,
	})
	if err != nil {
		h.fail(w, err, "Failed to update technician grades")
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ReviewResponse{
		Success: true,
		Message: "Technician grades saved successfully",
		Record:  rec,
	})
}

// Accept confirms the AI grades of a record as the technician review.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	var req AcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondMessage(w, h.logger, http.StatusBadRequest, msgMissingAccept, err)
		return
	}

	batchID := firstNonEmpty(req.BatchID, req.BlkNumber)
	if req.DocumentID == "" || batchID == "" {
		handlers.RespondMessage(w, h.logger, http.StatusBadRequest, msgMissingAccept, nil)
		return
	}

	current, err := h.sys.Find(r.Context(), req.DocumentID, batchID)
	if err != nil {
		h.fail(w, err, "Failed to update technician grades")
		return
	}

	rec, err := h.sys.UpdateReview(r.Context(), req.DocumentID, batchID, current.AcceptCommand(principal(r), req.Version))
	if err != nil {
		h.fail(w, err, "Failed to update technician grades")
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ReviewResponse{
		Success: true,
		Message: "AI grades accepted",
		Record:  rec,
	})
}

// History lists one batch newest first, or the most recent records across
// all batches when no batch is given.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if batchID := batchParam(r.URL.Query()); batchID != "" {
		items, err := h.sys.ListByBatch(r.Context(), batchID)
		if err != nil {
			h.fail(w, err, "Failed to fetch grading records")
			return
		}
		handlers.RespondJSON(w, http.StatusOK, HistoryResponse{Records: items})
		return
	}

	limit, err := h.limits.ParseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	items, err := h.sys.ListRecent(r.Context(), limit)
	if err != nil {
		h.fail(w, err, "Failed to fetch grading records")
		return
	}
	handlers.RespondJSON(w, http.StatusOK, HistoryResponse{Records: items})
}

// Find returns a single record.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sys.Find(r.Context(), r.PathValue("id"), r.PathValue("batchId"))
	if err != nil {
		h.fail(w, err, "Failed to fetch grading record")
		return
	}
	handlers.RespondJSON(w, http.StatusOK, rec)
}

// List returns a page of records filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.Search(r.Context(), page, filters)
	if err != nil {
		h.fail(w, err, "Failed to search grading records")
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts pagination and filter criteria as a JSON body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.Search(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		h.fail(w, err, "Failed to search grading records")
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// fail writes domain errors as-is and hides server-side causes behind
// message.
func (h *Handler) fail(w http.ResponseWriter, err error, message string) {
	status := MapHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		handlers.RespondMessage(w, h.logger, status, message, err)
		return
	}
	handlers.RespondError(w, h.logger, status, err)
}

func principal(r *http.Request) string {
	if id, ok := auth.FromContext(r.Context()); ok {
		return id.Principal()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
