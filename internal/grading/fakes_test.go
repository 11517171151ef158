package grading_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/JaimeStill/grader/internal/records"
	"github.com/JaimeStill/grader/pkg/lifecycle"
	"github.com/JaimeStill/grader/pkg/pagination"
	"github.com/JaimeStill/grader/pkg/storage"
	"github.com/JaimeStill/grader/pkg/vision"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeVision struct {
	content string
	model   string
	err     error
	calls   int
	last    vision.Request
}

func (f *fakeVision) Describe(_ context.Context, req vision.Request) (*vision.Response, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &vision.Response{Content: f.content, Model: f.model}, nil
}

func (f *fakeVision) Provider() string { return "fake" }
func (f *fakeVision) Model() string    { return f.model }
func (f *fakeVision) Close() error     { return nil }

const blobBase = "https://grader.blob.core.windows.net/potato-images/"

type fakeBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	metadata  map[string]map[string]string
	uploadErr error
	deleted   []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{
		objects:  make(map[string][]byte),
		metadata: make(map[string]map[string]string),
	}
}

func (f *fakeBlobs) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeBlobs) Upload(_ context.Context, key string, r io.Reader, _ string, metadata map[string]string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.metadata[key] = metadata
	return blobBase + key, nil
}

func (f *fakeBlobs) Download(_ context.Context, key string) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{Body: io.NopCloser(bytes.NewReader(data)), ContentLength: int64(len(data))}, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobs) KeyFromURL(rawURL string) (string, error) {
	key, ok := strings.CutPrefix(rawURL, blobBase)
	if !ok {
		return "", storage.ErrForeignURL
	}
	return key, nil
}

type fakeRecords struct {
	createErr error
	created   []records.CreateCommand
	stored    []records.Record
}

func (f *fakeRecords) Handler() *records.Handler { return nil }

func (f *fakeRecords) Create(_ context.Context, cmd records.CreateCommand) (*records.Record, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, cmd)
	rec := records.NewRecord(cmd, fixedNow)
	f.stored = append(f.stored, rec)
	return &rec, nil
}

func (f *fakeRecords) Find(context.Context, string, string) (*records.Record, error) {
	return nil, records.ErrNotFound
}

func (f *fakeRecords) UpdateReview(context.Context, string, string, records.ReviewCommand) (*records.Record, error) {
	return nil, records.ErrNotFound
}

func (f *fakeRecords) ListByBatch(context.Context, string) ([]records.Record, error) {
	return nil, nil
}

func (f *fakeRecords) ListRecent(context.Context, int) ([]records.Record, error) {
	return nil, nil
}

func (f *fakeRecords) Search(context.Context, pagination.PageRequest, records.Filters) (*pagination.PageResult[records.Record], error) {
	return nil, nil
}

