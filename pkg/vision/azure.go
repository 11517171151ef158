package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
)

const cognitiveScope = "https://cognitiveservices.azure.com/.default"

type azureClient struct {
	pipeline    runtime.Pipeline
	endpoint    string
	deployment  string
	apiVersion  string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	logger      *slog.Logger
}

type apiKeyPolicy struct {
	key string
}

func (p apiKeyPolicy) Do(req *policy.Request) (*http.Response, error) {
	req.Raw().Header.Set("api-key", p.key)
	return req.Next()
}

// NewAzure constructs an Azure OpenAI chat-completions client. transport
// overrides the HTTP transport when non-nil.
func NewAzure(cfg *Config, transport policy.Transporter, logger *slog.Logger) (Client, error) {
	var auth policy.Policy

	switch cfg.AuthType {
	case AuthAzureIdentity:
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("create azure credential: %w", err)
		}
		auth = runtime.NewBearerTokenPolicy(cred, []string{cognitiveScope}, nil)
	default:
		auth = apiKeyPolicy{key: cfg.APIKey}
	}

	opts := &policy.ClientOptions{
		Retry: policy.RetryOptions{MaxRetries: -1},
	}
	if transport != nil {
		opts.Transport = transport
	}

	pl := runtime.NewPipeline(
		"grader/vision",
		"v1",
		runtime.PipelineOptions{PerCall: []policy.Policy{auth}},
		opts,
	)

	return &azureClient{
		pipeline:    pl,
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		deployment:  cfg.Deployment,
		apiVersion:  cfg.APIVersion,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.TimeoutDuration(),
		logger:      logger,
	}, nil
}

func newAzure(cfg *Config, logger *slog.Logger) (Client, error) {
	return NewAzure(cfg, nil, logger)
}

func (c *azureClient) Provider() string { return ProviderAzure }

func (c *azureClient) Model() string { return c.deployment }

func (c *azureClient) Close() error { return nil }

type chatContent struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *azureClient) Describe(ctx context.Context, r Request) (*Response, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	req, err := runtime.NewRequest(ctx, http.MethodPost, c.completionsURL())
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}

	imageData, err := dataURI(r.ContentType, r.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: encode image: %v", ErrUpstream, err)
	}

	body := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: r.SystemPrompt},
			{Role: "user", Content: []chatContent{
				{Type: "text", Text: r.UserPrompt},
				{Type: "image_url", ImageURL: &imageURL{
					URL:    imageData,
					Detail: "high",
				}},
			}},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	if err := runtime.MarshalAsJSON(req, body); err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrUpstream, err)
	}

	resp, err := c.pipeline.Do(req)
	if err != nil {
		return nil, wrap(ctx, err)
	}

	if !runtime.HasStatusCode(resp, http.StatusOK) {
		respErr := runtime.NewResponseError(resp)
		var azErr *azcore.ResponseError
		if errors.As(respErr, &azErr) {
			c.logger.Warn("vision provider rejected request",
				"status", azErr.StatusCode,
				"code", azErr.ErrorCode,
			)
		}
		return nil, fmt.Errorf("%w: %v", classifyStatus(resp.StatusCode), respErr)
	}

	var out chatResponse
	if err := runtime.UnmarshalAsJSON(resp, &out); err != nil {
		return nil, wrap(ctx, err)
	}

	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyResponse
	}

	model := out.Model
	if model == "" {
		model = c.deployment
	}

	return &Response{
		Content: out.Choices[0].Message.Content,
		Model:   model,
	}, nil
}

func (c *azureClient) completionsURL() string {
	return fmt.Sprintf(
		"%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint,
		url.PathEscape(c.deployment),
		url.QueryEscape(c.apiVersion),
	)
}

// dataURI inlines the image as a base64 data URI. Anything that is not PNG
// is sent as JPEG, the only other accepted upload type.
func dataURI(contentType string, data []byte) (string, error) {
	format := document.JPEG
	if imageFormat(contentType) == "png" {
		format = document.PNG
	}
	return encoding.EncodeImageDataURI(data, format)
}
