package service

import (
	"context"
	"log"

	"infograph/internal/config"
	"infograph/internal/domain"
	"infograph/internal/port"
)

// ExtractInput is the confirm-and-extract request: which identification,
// which of its items, and how to extract them.
type ExtractInput struct {
	IdentificationID string
	Selections       []domain.ItemSelection
	Options          domain.ExtractionOptions
}

// ExtractOutput carries the datasets that succeeded and a warning entry for
// every selected item that did not.
type ExtractOutput struct {
	Datasets []domain.Dataset
	Failures []domain.ItemFailure
}

// ExtractionService runs the extract phase end to end: plan, fetch the
// page, execute, persist.
type ExtractionService interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}

type extractionService struct {
	planner     *Planner
	pages       port.PageSource
	executor    *Executor
	datasetRepo port.DatasetRepository
	cfg         *config.VisionConfig
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	planner *Planner,
	pages port.PageSource,
	executor *Executor,
	datasetRepo port.DatasetRepository,
	cfg *config.VisionConfig,
) ExtractionService {
	return &extractionService{
		planner:     planner,
		pages:       pages,
		executor:    executor,
		datasetRepo: datasetRepo,
		cfg:         cfg,
	}
}

func (s *extractionService) Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error) {
	if !s.cfg.Configured() {
		return nil, domain.ErrVisionNotConfigured
	}

	opts := input.Options
	if opts.Granularity == "" {
		opts.Granularity = domain.GranularityFull
	}
	if !opts.Granularity.Valid() {
		return nil, domain.ErrInvalidGranularity
	}

	plan, err := s.planner.Plan(ctx, input.IdentificationID, input.Selections)
	if err != nil {
		return nil, err
	}

	src := plan.Identification.Source
	image, err := s.pages.Fetch(ctx, src.FileID, src.Page)
	if err != nil {
		return nil, err
	}

	log.Printf("extractionService.Extract: extracting %d items from file %s page %d (granularity %s)",
		len(plan.Items), src.FileID, src.Page, opts.Granularity)

	result, err := s.executor.Execute(ctx, image, plan, opts)
	if err != nil {
		return nil, err
	}

	// Persistence failures do not invalidate extraction results already in
	// hand; they are logged and the data is still returned to the caller.
	for i := range result.Datasets {
		if err := s.datasetRepo.Create(ctx, &result.Datasets[i]); err != nil {
			log.Printf("extractionService.Extract: failed to persist dataset %s: %v", result.Datasets[i].ID, err)
		}
	}

	log.Printf("extractionService.Extract: produced %d datasets, %d failures",
		len(result.Datasets), len(result.Failures))
	return &ExtractOutput{Datasets: result.Datasets, Failures: result.Failures}, nil
}
