package vision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type geminiClient struct {
	client  *genai.Client
	model   string
	tokens  int32
	temp    float32
	timeout time.Duration
	logger  *slog.Logger
}

func newGemini(cfg *Config, logger *slog.Logger) (Client, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	logger.Info("gemini client initialized", "model", cfg.Model)

	return &geminiClient{
		client:  client,
		model:   cfg.Model,
		tokens:  int32(cfg.MaxTokens),
		temp:    float32(cfg.Temperature),
		timeout: cfg.TimeoutDuration(),
		logger:  logger,
	}, nil
}

func (c *geminiClient) Provider() string { return ProviderGemini }

func (c *geminiClient) Model() string { return c.model }

func (c *geminiClient) Close() error { return c.client.Close() }

func (c *geminiClient) Describe(ctx context.Context, r Request) (*Response, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(r.SystemPrompt)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr(c.temp),
		MaxOutputTokens: genai.Ptr(c.tokens),
	}

	resp, err := model.GenerateContent(ctx,
		genai.ImageData(imageFormat(r.ContentType), r.Image),
		genai.Text(r.UserPrompt),
	)
	if err != nil {
		return nil, wrap(ctx, err)
	}

	text := candidateText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	return &Response{Content: text, Model: c.model}, nil
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// imageFormat converts a MIME type into the short format genai.ImageData expects.
func imageFormat(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return "png"
	default:
		return "jpeg"
	}
}
