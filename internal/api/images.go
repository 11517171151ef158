package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/JaimeStill/grader/internal/auth"
	"github.com/JaimeStill/grader/pkg/handlers"
	"github.com/JaimeStill/grader/pkg/routes"
	"github.com/JaimeStill/grader/pkg/storage"
)

type imageHandler struct {
	store  storage.System
	auth   *auth.Authenticator
	logger *slog.Logger
}

func newImageHandler(store storage.System, authn *auth.Authenticator, logger *slog.Logger) *imageHandler {
	return &imageHandler{
		store:  store,
		auth:   authn,
		logger: logger.With("handler", "images"),
	}
}

func (h *imageHandler) routes() routes.Group {
	return routes.Group{
		Prefix:     "/images",
		Middleware: []func(http.Handler) http.Handler{h.auth.Required()},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.stream},
		},
	}
}

// stream writes a stored image inline so the review screen can render it.
func (h *imageHandler) stream(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	obj, err := h.store.Download(r.Context(), key)
	if err != nil {
		status := storage.MapHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			handlers.RespondMessage(w, h.logger, status, "Image storage unavailable", err)
			return
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if obj.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn("image stream interrupted", "key", key, "error", err)
	}
}
