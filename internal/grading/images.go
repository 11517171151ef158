package grading

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/grader/pkg/storage"
)

// ImageStore persists uploaded photographs.
type ImageStore interface {
	Store(ctx context.Context, data []byte, path, contentType string, metadata map[string]string) (string, error)
	// Delete removes a stored image by URL. Failures are logged, never returned.
	Delete(ctx context.Context, url string)
}

type blobImages struct {
	store  storage.System
	logger *slog.Logger
}

// NewImageStore adapts a blob storage system to ImageStore.
func NewImageStore(store storage.System, logger *slog.Logger) ImageStore {
	return &blobImages{
		store:  store,
		logger: logger.With("system", "images"),
	}
}

func (b *blobImages) Store(ctx context.Context, data []byte, path, contentType string, metadata map[string]string) (string, error) {
	url, err := b.store.Upload(ctx, path, bytes.NewReader(data), contentType, metadata)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return url, nil
}

func (b *blobImages) Delete(ctx context.Context, url string) {
	key, err := b.store.KeyFromURL(url)
	if err != nil {
		b.logger.Warn("cannot resolve image url for cleanup", "url", url, "error", err)
		return
	}
	if err := b.store.Delete(ctx, key); err != nil {
		b.logger.Warn("image cleanup failed", "key", key, "error", err)
		return
	}
	b.logger.Info("image removed after failed grading", "key", key)
}

var unsafeRunes = regexp.MustCompile(`[^A-Za-z0-9.]`)

// Sanitize replaces every rune outside [A-Za-z0-9.] with an underscore and
// collapses ".." so the result cannot traverse path segments.
func Sanitize(s string) string {
	s = unsafeRunes.ReplaceAllString(s, "_")
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	return s
}

// ObjectPath builds the blob path <batch>/<unixMillis>-<filename>.
func ObjectPath(batchID, filename string, now time.Time) string {
	name := Sanitize(filename)
	if name == "" || name == "." {
		name = "image"
	}
	return Sanitize(batchID) + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + name
}
