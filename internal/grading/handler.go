package grading

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/JaimeStill/grader/internal/auth"
	"github.com/JaimeStill/grader/internal/intake"
	"github.com/JaimeStill/grader/pkg/handlers"
	"github.com/JaimeStill/grader/pkg/routes"
)

// formOverhead allows for the non-file multipart fields and boundaries on
// top of the image size ceiling.
const formOverhead = 1 << 20

// Handler provides the image grading endpoint.
type Handler struct {
	sys     System
	auth    *auth.Authenticator
	maxSize int64
	logger  *slog.Logger
}

// Response wraps a grading result.
type Response struct {
	Result *Result `json:"result"`
}

func NewHandler(sys System, authn *auth.Authenticator, maxSize int64, logger *slog.Logger) *Handler {
	return &Handler{
		sys:     sys,
		auth:    authn,
		maxSize: maxSize,
		logger:  logger.With("handler", "grading"),
	}
}

// Routes returns the grading route group. Authentication is optional; the
// caller identity is recorded when present.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:     "/grade",
		Middleware: []func(http.Handler) http.Handler{h.auth.Optional()},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Grade},
		},
	}
}

// Grade accepts a multipart upload with an image field and optional
// batchId (or blkNumber), station and batchInfo fields.
func (h *Handler) Grade(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, max-age=0")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+formOverhead)
	if err := r.ParseMultipartForm(h.maxSize + formOverhead); err != nil {
		h.fail(w, h.formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	sub, err := h.submission(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	result, err := h.sys.Submit(r.Context(), *sub)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Response{Result: result})
}

func (h *Handler) submission(r *http.Request) (*Submission, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, intake.ErrMissing
		}
		return nil, fmt.Errorf("%w: %v", intake.ErrMissing, err)
	}
	defer file.Close()

	sub := &Submission{
		File: intake.File{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
		},
		BatchID:   firstValue(r.MultipartForm, "batchId", "blkNumber"),
		Station:   firstValue(r.MultipartForm, "station"),
		BatchInfo: firstValue(r.MultipartForm, "batchInfo"),
	}

	if id, ok := auth.FromContext(r.Context()); ok {
		sub.Technician = id.Principal()
	}

	// Oversized files are rejected by Submit from the header size; reading
	// stops just past the ceiling.
	sub.Image, err = io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (h *Handler) formError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return &intake.TooLargeError{Size: tooBig.Limit, Max: h.maxSize}
	}
	return fmt.Errorf("%w: %v", intake.ErrMissing, err)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	handlers.RespondMessage(w, h.logger, MapHTTPStatus(err), Message(err), err)
}

func firstValue(form *multipart.Form, keys ...string) string {
	for _, k := range keys {
		if v := form.Value[k]; len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return ""
}
