package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"infograph/internal/domain"
	"infograph/internal/service"
)

// MockDatasetService is a mock implementation of service.DatasetService.
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) GetByID(ctx context.Context, datasetID string) (*domain.Dataset, error) {
	args := m.Called(ctx, datasetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

func (m *MockDatasetService) List(ctx context.Context, offset, limit int) ([]domain.Dataset, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Dataset), args.Int(1), args.Error(2)
}

func (m *MockDatasetService) Update(ctx context.Context, datasetID string, input service.DatasetUpdateInput) (*domain.Dataset, error) {
	args := m.Called(ctx, datasetID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}
