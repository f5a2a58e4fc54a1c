package service

import (
	"context"
	"log"
	"time"

	"infograph/internal/domain"
	"infograph/internal/port"
)

// DatasetUpdateInput is the review-flow edit request. Nil slices mean
// "leave unchanged"; provided values replace the dataset's wholesale.
type DatasetUpdateInput struct {
	Title   *string      `json:"title,omitempty"`
	Columns []string     `json:"columns,omitempty"`
	Rows    []domain.Row `json:"rows,omitempty"`
	Notes   *string      `json:"notes,omitempty"`
}

// DatasetService exposes persisted extraction results for review.
type DatasetService interface {
	GetByID(ctx context.Context, datasetID string) (*domain.Dataset, error)
	List(ctx context.Context, offset, limit int) ([]domain.Dataset, int, error)
	Update(ctx context.Context, datasetID string, input DatasetUpdateInput) (*domain.Dataset, error)
}

type datasetService struct {
	datasetRepo port.DatasetRepository
	now         func() time.Time
}

// NewDatasetService creates a new DatasetService implementation.
func NewDatasetService(datasetRepo port.DatasetRepository) DatasetService {
	return &datasetService{datasetRepo: datasetRepo, now: time.Now}
}

func (s *datasetService) GetByID(ctx context.Context, datasetID string) (*domain.Dataset, error) {
	return s.datasetRepo.GetByID(ctx, datasetID)
}

func (s *datasetService) List(ctx context.Context, offset, limit int) ([]domain.Dataset, int, error) {
	return s.datasetRepo.List(ctx, offset, limit)
}

func (s *datasetService) Update(ctx context.Context, datasetID string, input DatasetUpdateInput) (*domain.Dataset, error) {
	ds, err := s.datasetRepo.GetByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if input.Title != nil && *input.Title != ds.Title {
		changes["title"] = map[string]any{"from": ds.Title, "to": *input.Title}
		ds.Title = *input.Title
	}
	if input.Columns != nil {
		changes["columns"] = map[string]any{"count": len(input.Columns)}
		ds.Columns = input.Columns
	}
	if input.Rows != nil {
		changes["rows"] = map[string]any{"from_count": len(ds.Rows), "to_count": len(input.Rows)}
		ds.Rows = input.Rows
	}
	if input.Notes != nil {
		ds.Metadata.Notes = *input.Notes
		changes["notes"] = map[string]any{"to": *input.Notes}
	}

	if len(changes) == 0 {
		return ds, nil
	}

	ts := s.now().UTC()
	ds.UpdatedAt = ts
	ds.EditHistory = append(ds.EditHistory, domain.EditHistoryEntry{
		Timestamp: ts,
		Action:    "update",
		Changes:   changes,
	})

	if err := s.datasetRepo.Update(ctx, ds); err != nil {
		log.Printf("datasetService.Update: failed to update dataset %s: %v", datasetID, err)
		return nil, err
	}
	return ds, nil
}
