// Package app assembles the configured application: telemetry, database,
// services, HTTP handlers and background jobs.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/yukikurage/tasknest/internal/config"
	"github.com/yukikurage/tasknest/internal/database"
	"github.com/yukikurage/tasknest/internal/handlers"
	"github.com/yukikurage/tasknest/internal/jobs"
	"github.com/yukikurage/tasknest/internal/repository"
	"github.com/yukikurage/tasknest/internal/server"
	"github.com/yukikurage/tasknest/internal/services"
	"github.com/yukikurage/tasknest/internal/telemetry"
)

const instrumentationName = "github.com/yukikurage/tasknest"

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB

	Tasks *services.TaskService
	Tags  *services.TagService

	providers *telemetry.Providers
	scheduler *jobs.Scheduler
}

// New starts telemetry, opens and migrates the database and builds the
// services. The AI service is only enabled when an OpenAI key is configured.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	providers, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	logger = providers.Logger

	db, err := database.Connect(cfg, logger)
	if err != nil {
		_ = providers.Shutdown(ctx)
		return nil, err
	}

	if err := database.Migrate(db); err != nil {
		closeDB(db)
		_ = providers.Shutdown(ctx)
		return nil, err
	}

	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		logger.Info("OPENAI_API_KEY not set, task generation disabled")
	}

	taskRepo := repository.NewTaskRepository(db)
	tagRepo := repository.NewTagRepository(db)

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Tasks:     services.NewTaskService(taskRepo, tagRepo, aiService),
		Tags:      services.NewTagService(tagRepo),
		providers: providers,
	}, nil
}

// Handler builds the instrumented HTTP router.
func (a *App) Handler() (http.Handler, error) {
	metrics, err := telemetry.NewMetrics(otel.Meter(instrumentationName), a.Tasks.CountActiveTasks)
	if err != nil {
		return nil, err
	}

	return server.NewRouter(server.Handlers{
		Task:   handlers.NewTaskHandler(a.Tasks, a.Logger),
		Tag:    handlers.NewTagHandler(a.Tags, a.Logger),
		Health: handlers.NewHealthHandler(a.DB),
	}, a.Logger, metrics), nil
}

// NewServer returns a server listening on the configured port.
func (a *App) NewServer() (*server.Server, error) {
	handler, err := a.Handler()
	if err != nil {
		return nil, err
	}
	return server.New(":"+a.Config.ServerPort, handler, a.Logger), nil
}

// StartJobs schedules the stats reporter when STATS_SCHEDULE is set.
func (a *App) StartJobs() error {
	if a.Config.StatsSchedule == "" {
		return nil
	}

	scheduler := jobs.NewScheduler(a.Logger)
	reporter := jobs.NewStatsReporter(a.Tasks, a.Logger)
	if _, err := scheduler.Schedule("stats", a.Config.StatsSchedule, reporter.Report); err != nil {
		return err
	}

	scheduler.Start()
	a.scheduler = scheduler
	return nil
}

// Close stops background jobs, closes the database and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Stop()
		a.scheduler = nil
	}

	var errs []error
	if sqlDB, err := a.DB.DB(); err != nil {
		errs = append(errs, err)
	} else if err := sqlDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	if err := a.providers.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down telemetry: %w", err))
	}

	return errors.Join(errs...)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
