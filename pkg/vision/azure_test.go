package vision_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/grader/pkg/vision"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func azureConfig(endpoint string) *vision.Config {
	return &vision.Config{
		Provider:    vision.ProviderAzure,
		Endpoint:    endpoint,
		Deployment:  "gpt-4o",
		APIVersion:  "2025-01-01-preview",
		AuthType:    vision.AuthAPIKey,
		APIKey:      "test-key",
		Timeout:     "2s",
		MaxTokens:   800,
		Temperature: 0.7,
	}
}

func newAzure(t *testing.T, srv *httptest.Server, cfg *vision.Config) vision.Client {
	t.Helper()
	c, err := vision.NewAzure(cfg, srv.Client(), discardLogger())
	if err != nil {
		t.Fatalf("NewAzure: %v", err)
	}
	return c
}

var potato = vision.Request{
	SystemPrompt: "grade the potato",
	UserPrompt:   "Please grade this potato.",
	Image:        []byte{0xFF, 0xD8, 0xFF},
	ContentType:  "image/jpeg",
}

func TestAzureDescribe(t *testing.T) {
	var captured map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/deployments/gpt-4o/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if v := r.URL.Query().Get("api-version"); v != "2025-01-01-preview" {
			t.Errorf("api-version = %s", v)
		}
		if k := r.Header.Get("api-key"); k != "test-key" {
			t.Errorf("api-key = %s", k)
		}
		json.NewDecoder(r.Body).Decode(&captured)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"gpt-4o-2024-08-06","choices":[{"message":{"content":"Shininess: 4/5\nSmoothness: 3/5\nCombined: 7/10"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := newAzure(t, srv, azureConfig(srv.URL+"/"))

	resp, err := c.Describe(context.Background(), potato)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if !strings.HasPrefix(resp.Content, "Shininess: 4/5") {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Model != "gpt-4o-2024-08-06" {
		t.Errorf("model = %s", resp.Model)
	}

	if captured["max_tokens"] != float64(800) {
		t.Errorf("max_tokens = %v", captured["max_tokens"])
	}
	if captured["temperature"] != 0.7 {
		t.Errorf("temperature = %v", captured["temperature"])
	}

	messages := captured["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	user := messages[1].(map[string]any)["content"].([]any)
	image := user[1].(map[string]any)["image_url"].(map[string]any)
	if url := image["url"].(string); !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("image url = %s", url)
	}
	if image["detail"] != "high" {
		t.Errorf("detail = %v", image["detail"])
	}
}

func TestAzureDescribeStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, vision.ErrRateLimited},
		{"unauthorized", http.StatusUnauthorized, vision.ErrAuth},
		{"forbidden", http.StatusForbidden, vision.ErrAuth},
		{"gateway timeout", http.StatusGatewayTimeout, vision.ErrTimeout},
		{"server error", http.StatusInternalServerError, vision.ErrUpstream},
		{"bad request", http.StatusBadRequest, vision.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"code":"Failure","message":"nope"}}`))
			}))
			defer srv.Close()

			c := newAzure(t, srv, azureConfig(srv.URL))

			_, err := c.Describe(context.Background(), potato)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want 1 (no retries)", calls)
			}
		})
	}
}

func TestAzureDescribeEmpty(t *testing.T) {
	bodies := map[string]string{
		"no choices":    `{"choices":[]}`,
		"blank content": `{"choices":[{"message":{"content":"  "}}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
			}))
			defer srv.Close()

			c := newAzure(t, srv, azureConfig(srv.URL))

			_, err := c.Describe(context.Background(), potato)
			if !errors.Is(err, vision.ErrEmptyResponse) {
				t.Errorf("error = %v, want ErrEmptyResponse", err)
			}
		})
	}
}

func TestAzureDescribeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := azureConfig(srv.URL)
	cfg.Timeout = "50ms"
	c := newAzure(t, srv, cfg)

	start := time.Now()
	_, err := c.Describe(context.Background(), potato)
	if !errors.Is(err, vision.ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Describe took %s, want bounded by timeout", elapsed)
	}
}

func TestAzureAccessors(t *testing.T) {
	c, err := vision.NewAzure(azureConfig("https://example.openai.azure.com"), nil, discardLogger())
	if err != nil {
		t.Fatalf("NewAzure: %v", err)
	}
	if c.Provider() != vision.ProviderAzure {
		t.Errorf("provider = %s", c.Provider())
	}
	if c.Model() != "gpt-4o" {
		t.Errorf("model = %s", c.Model())
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
