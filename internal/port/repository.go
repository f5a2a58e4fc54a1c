package port

import (
	"context"

	"github.com/google/uuid"

	"infograph/internal/domain"
)

// FileMetaRepository persists uploaded-file metadata.
type FileMetaRepository interface {
	Create(ctx context.Context, meta *domain.FileMeta) error
	GetByID(ctx context.Context, fileID uuid.UUID) (*domain.FileMeta, error)
	List(ctx context.Context, offset, limit int) ([]domain.FileMeta, int, error)
	UpdateStatus(ctx context.Context, fileID uuid.UUID, status domain.FileStatus) error
	Delete(ctx context.Context, fileID uuid.UUID) error
}

// DatasetRepository persists extraction results for review and export.
type DatasetRepository interface {
	Create(ctx context.Context, ds *domain.Dataset) error
	GetByID(ctx context.Context, datasetID string) (*domain.Dataset, error)
	List(ctx context.Context, offset, limit int) ([]domain.Dataset, int, error)
	Update(ctx context.Context, ds *domain.Dataset) error
}
