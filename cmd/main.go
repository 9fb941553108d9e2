package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/sceneforge/sceneforge/internal/app"
	"github.com/sceneforge/sceneforge/internal/assets"
	"github.com/sceneforge/sceneforge/internal/config"
	"github.com/sceneforge/sceneforge/internal/logger"
	"github.com/sceneforge/sceneforge/internal/pipeline"
	"github.com/sceneforge/sceneforge/internal/services"
	"github.com/sceneforge/sceneforge/internal/store"
	"github.com/sceneforge/sceneforge/pkg/api/v1/handlers"
)

func main() {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}

	logger.InitializeAndConfigure()

	cfg := config.Load()

	for _, dir := range []string{cfg.UploadDir, cfg.JobsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatalf("Creating directory %s: %v", dir, err)
		}
	}

	pipes, err := pipeline.NewSetFromConfig(cfg)
	if err != nil {
		logger.Fatalf("Loading pipeline definitions: %v", err)
	}

	jobStore := store.New()
	publisher := assets.NewPublisher(cfg.JobsDir, cfg.DemoAssetsDir)
	executor := pipeline.NewExecutor(cfg.GPUEnabled)
	runner := pipeline.NewRunner(jobStore, executor, publisher, pipes)
	jobService := services.NewJobService(cfg, jobStore, runner)

	jobHandler := handlers.NewJobHandler(jobService, publisher)
	healthHandler := handlers.NewHealthHandler(jobService)

	srv := app.New(cfg, jobHandler, healthHandler)

	logger.InfoWithFields("Server starting", map[string]interface{}{
		"port":          cfg.Port,
		"mode":          cfg.Mode,
		"pipeline_mode": string(cfg.PipelineMode),
		"gpu_enabled":   cfg.GPUEnabled,
	})

	if err := srv.Listen(":" + cfg.Port); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
