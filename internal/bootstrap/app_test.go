package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/reports"
	"resume-analyzer/internal/shared/config"
)

func TestBuildDevFallsBackToMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(context.Background(), config.Config{
		Env:           "dev",
		LocalStoreDir: t.TempDir(),
		LLMProvider:   "none",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	if app.DB != nil {
		t.Fatalf("expected no database")
	}
	if _, ok := app.ReportsRepo.(*reports.MemoryRepo); !ok {
		t.Fatalf("expected memory repo, got %T", app.ReportsRepo)
	}
	if app.Publisher != nil {
		t.Fatalf("expected events disabled")
	}
	if app.Config.ObjectStoreType != "local" {
		t.Fatalf("expected local store default, got %q", app.Config.ObjectStoreType)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	_, err := Build(context.Background(), config.Config{Env: "production", LocalStoreDir: t.TempDir()})
	if err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestBuildRequiresBucketForS3(t *testing.T) {
	_, err := Build(context.Background(), config.Config{Env: "dev", ObjectStoreType: "s3"})
	if err == nil {
		t.Fatalf("expected error for s3 without bucket")
	}
}

func TestBuildGenerator(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.Config
		placeholder bool
	}{
		{"none", config.Config{LLMProvider: "none"}, true},
		{"gemini without key", config.Config{LLMProvider: "gemini"}, true},
		{"openai without key", config.Config{LLMProvider: "openai"}, true},
		{"gemini", config.Config{LLMProvider: "gemini", GeminiAPIKey: "k", LLMModel: "gemini-2.5-flash-lite"}, false},
		{"openai", config.Config{LLMProvider: "openai", OpenAIAPIKey: "k", LLMModel: "gpt-4o-mini"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := buildGenerator(tt.cfg)
			if err != nil {
				t.Fatalf("buildGenerator: %v", err)
			}
			_, isPlaceholder := gen.(llm.PlaceholderClient)
			if isPlaceholder != tt.placeholder {
				t.Fatalf("placeholder = %v, want %v (%T)", isPlaceholder, tt.placeholder, gen)
			}
		})
	}
}
