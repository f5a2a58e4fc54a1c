package port

import (
	"context"

	"github.com/google/uuid"
)

// PageImage is the raw payload handed to the vision model for one page.
type PageImage struct {
	Data        []byte
	ContentType string
}

// PageSource resolves a (file, page) reference into model-ready bytes:
// images pass through unchanged, PDF pages are extracted as single-page
// documents.
type PageSource interface {
	Fetch(ctx context.Context, fileID uuid.UUID, page int) (*PageImage, error)
}
