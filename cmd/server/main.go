package main

import (
	"fmt"
	"log"

	"infograph/internal/config"
	"infograph/internal/handler"
	"infograph/internal/repository/postgres"
	"infograph/internal/router"
	"infograph/internal/service"
	s3storage "infograph/internal/storage/s3"
	"infograph/internal/store/memory"
	"infograph/internal/vision"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	fileRepo := postgres.NewFileMetaRepo(db)
	datasetRepo := postgres.NewDatasetRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Vision model and identification store
	model := vision.NewClient(&cfg.Vision)
	identStore := memory.NewStore()

	// Initialize services
	fileSvc := service.NewFileService(fileRepo, s3Client, &cfg.S3)
	pages := service.NewPageSource(fileRepo, s3Client)
	identifySvc := service.NewIdentificationService(pages, model, identStore, &cfg.Vision)
	planner := service.NewPlanner(identStore)
	executor := service.NewExecutor(model, service.NewRetryPolicy(cfg.Vision.ExtractMaxAttempts, cfg.Vision.RetryBaseDelay()))
	extractSvc := service.NewExtractionService(planner, pages, executor, datasetRepo, &cfg.Vision)
	datasetSvc := service.NewDatasetService(datasetRepo)

	// Initialize handlers
	fileH := handler.NewFileHandler(fileSvc)
	extractH := handler.NewExtractHandler(identifySvc, extractSvc)
	datasetH := handler.NewDatasetHandler(datasetSvc)
	exportH := handler.NewExportHandler(datasetSvc)
	healthH := handler.NewHealthHandler(db, &cfg.Vision)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, fileH, extractH, datasetH, exportH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
