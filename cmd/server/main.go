package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/tasknest/internal/app"
	"github.com/yukikurage/tasknest/internal/config"
	"github.com/yukikurage/tasknest/internal/server"
	"github.com/yukikurage/tasknest/internal/telemetry"
)

func main() {
	logger := telemetry.NewJSONLogger(os.Stdout, slog.LevelInfo)

	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", slog.Any("error", err))
		os.Exit(1)
	}
	logger = application.Logger

	srv, err := application.NewServer()
	if err != nil {
		logger.Error("failed to build server", slog.Any("error", err))
		_ = application.Close(ctx)
		os.Exit(1)
	}

	if err := application.StartJobs(); err != nil {
		logger.Error("failed to start jobs", slog.Any("error", err))
		_ = application.Close(ctx)
		os.Exit(1)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		}
	case sig := <-quit:
		logger.Info("received signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, server.DefaultShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
		exitCode = 1
	}
	if err := application.Close(shutdownCtx); err != nil {
		logger.Error("failed to release resources", slog.Any("error", err))
		exitCode = 1
	}

	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}
