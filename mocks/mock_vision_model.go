package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"infograph/internal/port"
)

// MockVisionModel is a mock implementation of port.VisionModel.
type MockVisionModel struct {
	mock.Mock
}

func (m *MockVisionModel) Complete(ctx context.Context, input port.CompletionInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}
