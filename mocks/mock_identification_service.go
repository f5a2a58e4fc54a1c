package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"infograph/internal/domain"
	"infograph/internal/service"
)

// MockIdentificationService is a mock implementation of service.IdentificationService.
type MockIdentificationService struct {
	mock.Mock
}

func (m *MockIdentificationService) Identify(ctx context.Context, input service.IdentifyInput) (*domain.Identification, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identification), args.Error(1)
}

func (m *MockIdentificationService) GetByID(ctx context.Context, identificationID string) (*domain.Identification, error) {
	args := m.Called(ctx, identificationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identification), args.Error(1)
}
