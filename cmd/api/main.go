package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/accessivision/backend/internal/api"
	"github.com/accessivision/backend/internal/config"
	"github.com/accessivision/backend/internal/logger"
	"github.com/accessivision/backend/internal/repository"
	"github.com/accessivision/backend/internal/scraper"
	"github.com/accessivision/backend/internal/service"
	"github.com/accessivision/backend/internal/workerpool"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// In-memory state: job registry and render cache live for the process
	// lifetime only.
	jobRepo := repository.NewJobRepository()
	renderCache := repository.NewRenderCache()

	// Shared pool bounding concurrent collaborator calls across all jobs
	pool := workerpool.New(cfg.Pipeline.Workers)

	// Collaborator adapters
	listingScraper := scraper.NewRealtorScraper(&http.Client{Timeout: cfg.Scraper.Timeout()})

	auditorService := service.NewAuditorService(&service.AuditorConfig{
		Model:   cfg.Auditor.Model,
		APIKey:  cfg.Auditor.APIKey,
		BaseURL: cfg.Auditor.BaseURL,
		Timeout: cfg.Auditor.Timeout(),
	})

	generatorService := service.NewGeneratorService(&service.GeneratorConfig{
		APIKey:  cfg.Generator.APIKey,
		BaseURL: cfg.Generator.BaseURL,
		Timeout: cfg.Generator.Timeout(),
	}, appLogger)

	// Core services
	auditService := service.NewAuditService(
		jobRepo,
		renderCache,
		listingScraper,
		auditorService,
		generatorService,
		pool,
		appLogger,
		&service.PipelineConfig{
			MaxImages: cfg.Pipeline.MaxImages,
		},
	)

	renovationService := service.NewRenovationService(renderCache, generatorService, pool, appLogger)

	// Setup router
	router := api.SetupRouter(auditService, renovationService, cfg, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port":    cfg.Server.Port,
			"mode":    cfg.Server.Mode,
			"workers": pool.Size(),
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout. In-flight pipelines are abandoned;
	// all job state is in-memory and does not survive a restart.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
