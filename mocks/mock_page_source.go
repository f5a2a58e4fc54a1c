package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"infograph/internal/port"
)

// MockPageSource is a mock implementation of port.PageSource.
type MockPageSource struct {
	mock.Mock
}

func (m *MockPageSource) Fetch(ctx context.Context, fileID uuid.UUID, page int) (*port.PageImage, error) {
	args := m.Called(ctx, fileID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.PageImage), args.Error(1)
}
