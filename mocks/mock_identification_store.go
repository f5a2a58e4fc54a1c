package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"infograph/internal/domain"
)

// MockIdentificationStore is a mock implementation of port.IdentificationStore.
type MockIdentificationStore struct {
	mock.Mock
}

func (m *MockIdentificationStore) Put(ctx context.Context, ident *domain.Identification) error {
	args := m.Called(ctx, ident)
	return args.Error(0)
}

func (m *MockIdentificationStore) Get(ctx context.Context, id string) (*domain.Identification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identification), args.Error(1)
}
