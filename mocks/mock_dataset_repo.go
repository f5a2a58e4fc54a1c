package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"infograph/internal/domain"
)

// MockDatasetRepo is a mock implementation of port.DatasetRepository.
type MockDatasetRepo struct {
	mock.Mock
}

func (m *MockDatasetRepo) Create(ctx context.Context, ds *domain.Dataset) error {
	args := m.Called(ctx, ds)
	return args.Error(0)
}

func (m *MockDatasetRepo) GetByID(ctx context.Context, datasetID string) (*domain.Dataset, error) {
	args := m.Called(ctx, datasetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

func (m *MockDatasetRepo) List(ctx context.Context, offset, limit int) ([]domain.Dataset, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Dataset), args.Int(1), args.Error(2)
}

func (m *MockDatasetRepo) Update(ctx context.Context, ds *domain.Dataset) error {
	args := m.Called(ctx, ds)
	return args.Error(0)
}
