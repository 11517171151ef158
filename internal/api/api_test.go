package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/grader/internal/api"
	"github.com/JaimeStill/grader/internal/auth"
	"github.com/JaimeStill/grader/internal/config"
	"github.com/JaimeStill/grader/internal/infrastructure"
	"github.com/JaimeStill/grader/pkg/database"
	"github.com/JaimeStill/grader/pkg/openapi"
	"github.com/JaimeStill/grader/pkg/pagination"
	"github.com/JaimeStill/grader/pkg/storage"
	"github.com/JaimeStill/grader/pkg/vision"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "grader",
			User:            "grader",
			Password:        "grader",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "potato-images",
			ConnectionString: azuriteConnString,
		},
		Vision: vision.Config{
			Provider:    vision.ProviderAzure,
			Endpoint:    "https://vision.example.com",
			Deployment:  "gpt-4o",
			APIVersion:  "2025-01-01-preview",
			AuthType:    vision.AuthAPIKey,
			APIKey:      "key",
			Timeout:     "30s",
			MaxTokens:   800,
			Temperature: 0.7,
		},
		Auth: auth.Config{
			Issuer:     "https://login.example.com",
			ClientID:   "grader",
			CookieName: "grader_session",
		},
		API: config.APIConfig{
			BasePath:     "/api",
			MaxImageSize: "6MB",
			Pagination:   pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
			Records:      pagination.Config{DefaultPageSize: 10, MaxPageSize: 1000},
			OpenAPI:      openapi.Config{Title: "Grader API"},
		},
		Analytics: config.AnalyticsConfig{
			CacheTTL:  "30s",
			CacheSize: 8,
			Bucket:    "1h",
		},
		LogLevel:        "error",
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	t.Cleanup(func() { infra.Database.Connection().Close() })
	return infra
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig()
	runtime := api.NewRuntime(cfg, setupInfra(t))

	if runtime.Records.DefaultPageSize != 10 || runtime.Records.MaxPageSize != 1000 {
		t.Errorf("records limits: got %+v", runtime.Records)
	}
	if runtime.MaxImageSize != 6*1024*1024 {
		t.Errorf("max image size: got %d", runtime.MaxImageSize)
	}
	if runtime.Vision == nil || runtime.Auth == nil || runtime.Storage == nil {
		t.Error("runtime missing infrastructure clients")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig()
	domain := api.NewDomain(api.NewRuntime(cfg, setupInfra(t)), &cfg.Analytics)

	if domain.Records == nil {
		t.Error("records system is nil")
	}
	if domain.Grading == nil {
		t.Error("grading system is nil")
	}
	if domain.Analytics == nil {
		t.Error("analytics system is nil")
	}
}

func TestNewModuleRoutes(t *testing.T) {
	cfg := validConfig()
	m, err := api.NewModule(cfg, setupInfra(t))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}

	tests := []struct {
		name   string
		method string
		path   string
		bearer bool
		status int
	}{
		{"openapi document", "GET", "/api/openapi.json", false, http.StatusOK},
		{"history requires auth", "GET", "/api/reviews", false, http.StatusUnauthorized},
		{"review requires auth", "POST", "/api/reviews", false, http.StatusUnauthorized},
		{"analytics requires auth", "GET", "/api/analytics", false, http.StatusUnauthorized},
		{"images require auth", "GET", "/api/images/BLK-1/a.jpg", false, http.StatusUnauthorized},
		{"provider not discovered", "GET", "/api/reviews", true, http.StatusServiceUnavailable},
		{"unknown route", "GET", "/api/documents", false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.bearer {
				req.Header.Set("Authorization", "Bearer not-yet-verifiable")
			}
			rec := httptest.NewRecorder()
			m.Serve(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}
