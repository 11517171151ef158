// Package vision sends an image and instructions to a hosted vision-capable
// language model and returns the model's text reply.
//
// Two providers are supported: Azure OpenAI chat completions, reached through
// an azcore pipeline, and Google Gemini through the generative-ai-go SDK.
// Neither client retries; failures are classified into the package's
// sentinel errors so callers can map them without inspecting provider types.
package vision

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Request describes a single image analysis call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Image        []byte
	ContentType  string
}

// Response is the model's text reply.
type Response struct {
	Content string
	Model   string
}

// Client is the vision model boundary.
type Client interface {
	Describe(ctx context.Context, req Request) (*Response, error)
	Provider() string
	Model() string
	Close() error
}

// New constructs the Client selected by cfg.Provider.
func New(cfg *Config, logger *slog.Logger) (Client, error) {
	logger = logger.With("system", "vision", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderGemini:
		return newGemini(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported vision provider %q", cfg.Provider)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
