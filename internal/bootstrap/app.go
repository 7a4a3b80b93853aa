package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/analyzer"
	"resume-analyzer/internal/chat"
	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/llm/gemini"
	"resume-analyzer/internal/llm/openai"
	"resume-analyzer/internal/queue"
	"resume-analyzer/internal/reports"
	"resume-analyzer/internal/services/health"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/server"
	"resume-analyzer/internal/shared/storage/db"
	"resume-analyzer/internal/shared/storage/object"
	localstore "resume-analyzer/internal/shared/storage/object/local"
	s3store "resume-analyzer/internal/shared/storage/object/s3"
	"resume-analyzer/internal/shared/telemetry"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Store          object.ObjectStore
	Publisher      queue.Publisher
	ReportsRepo    reports.Repo
	Analyzer       *analyzer.Analyzer
	ReportsService *reports.Service
	ChatService    *chat.Service
	Health         *health.Service

	closers []func() error
}

// Build connects infrastructure and wires services, handlers and routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil {
		app.DB = sqlDB
		app.closers = append(app.closers, sqlDB.Close)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	publisher, closePublisher, err := buildPublisher(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Publisher = publisher
	if closePublisher != nil {
		app.closers = append(app.closers, closePublisher)
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Analyzer = analyzer.New(gen, cfg.AITimeout)

	if app.DB != nil {
		app.ReportsRepo = &reports.PGRepo{DB: app.DB}
	} else {
		app.ReportsRepo = reports.NewMemoryRepo()
	}

	app.ReportsService = &reports.Service{
		Repo:      app.ReportsRepo,
		Analyzer:  app.Analyzer,
		Store:     app.Store,
		Publisher: app.Publisher,
	}
	app.ChatService = &chat.Service{
		Reports: app.ReportsRepo,
		Advisor: app.Analyzer,
	}

	app.Health = health.NewService()
	app.Health.Storage = cfg.ObjectStoreType
	app.Health.LLMProvider = cfg.LLMProvider
	app.Health.Events = app.Publisher != nil
	if app.DB != nil {
		app.Health.DB = app.DB
	}

	app.Router = server.NewRouter(server.Deps{
		Config:  cfg,
		Reports: reports.NewHandler(app.ReportsService),
		Chat:    chat.NewHandler(app.ChatService),
		Health:  app.Health,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"database":     dbMode(app.DB),
		"object_store": cfg.ObjectStoreType,
		"llm_provider": cfg.LLMProvider,
		"llm_model":    cfg.LLMModel,
		"events":       app.Publisher != nil,
	})

	return app, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db_memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		if err = db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db_memory", map[string]any{"reason": telemetry.ErrorString(err)})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildPublisher(cfg config.Config) (queue.Publisher, func() error, error) {
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		return nil, nil, nil
	}
	p, err := queue.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.events_disabled", map[string]any{"reason": telemetry.ErrorString(err)})
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return p, p.Close, nil
}

// buildGenerator picks the LLM backend. A provider without a key degrades to the
// placeholder so analyses fall back instead of the process refusing to start.
func buildGenerator(cfg config.Config) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"provider": "gemini"})
			return llm.PlaceholderClient{}, nil
		}
		return gemini.NewClient(cfg.GeminiAPIKey, cfg.LLMModel)
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"provider": "openai"})
			return llm.PlaceholderClient{}, nil
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	default:
		return llm.PlaceholderClient{}, nil
	}
}

func dbMode(sqlDB *sql.DB) string {
	if sqlDB == nil {
		return "memory"
	}
	return "postgres"
}
