package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/paydesk/swiftrecon/internal/config"
	"github.com/paydesk/swiftrecon/internal/eventbus"
	"github.com/paydesk/swiftrecon/internal/handler"
	"github.com/paydesk/swiftrecon/internal/server"
	"github.com/paydesk/swiftrecon/internal/service"
	"github.com/paydesk/swiftrecon/internal/storage"
	"github.com/paydesk/swiftrecon/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.Logging.Level)
	defer log.Sync()

	ctx := context.Background()
	log.Info(ctx, "Starting application")

	repo := storage.NewMemoryStore()
	log.Info(ctx, "Repository initialized")

	archiver := storage.NewArchiver(cfg.Recon.DataDir, log)

	eventBusCfg := &eventbus.Config{
		ChannelBuffer: cfg.EventBus.ChannelBufferSize,
		MaxRetries:    cfg.Worker.MaxRetries,
	}
	bus := eventbus.New(log, eventBusCfg)
	log.Info(ctx, "Event bus initialized")

	reconciliationService := service.NewReconciliationService(
		repo,
		archiver,
		log,
		cfg.Recon.SourceSystem,
		cfg.Recon.TargetSystem,
	)
	log.Info(ctx, "Services initialized")

	runConsumer := eventbus.NewRunConsumer(
		reconciliationService,
		repo,
		log,
		cfg.Worker.PoolSize,
	)
	log.Info(ctx, "Run consumer initialized",
		"worker_count", cfg.Worker.PoolSize,
	)

	err := bus.Subscribe(eventbus.EventTypeRunExecution, runConsumer)
	if err != nil {
		log.Fatal(ctx, "Failed to subscribe consumer",
			"error", err,
		)
	}

	err = bus.Start(ctx)
	if err != nil {
		log.Fatal(ctx, "Failed to start event bus",
			"error", err,
		)
	}

	reconciliationHandler := handler.NewReconciliationHandler(repo, bus, log)
	healthHandler := handler.NewHealthHandler()
	log.Info(ctx, "Handlers initialized")

	srv := server.New(cfg, log, reconciliationHandler, healthHandler)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal(ctx, "Failed to start HTTP server",
				"error", err,
			)
		}
	}()

	log.Info(ctx, "Application started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	// Graceful shutdown in order:
	// 1. Stop accepting new HTTP requests
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "HTTP server shutdown error",
			"error", err,
		)
	}

	// 2. Stop event bus and wait for in-flight runs to finish
	if err := bus.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "Event bus shutdown error",
			"error", err,
		)
	}

	log.Info(ctx, "Application stopped gracefully")
}
