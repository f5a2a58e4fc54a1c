package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"infograph/internal/domain"
	"infograph/internal/pdfpage"
	"infograph/internal/port"
)

type pageSourceService struct {
	fileRepo port.FileMetaRepository
	storage  port.ObjectStorage
}

// NewPageSource creates the PageSource used by identification and
// extraction: it downloads the original upload and, for PDFs, carves out
// the requested page as a standalone single-page document.
func NewPageSource(fileRepo port.FileMetaRepository, storage port.ObjectStorage) port.PageSource {
	return &pageSourceService{fileRepo: fileRepo, storage: storage}
}

func (s *pageSourceService) Fetch(ctx context.Context, fileID uuid.UUID, page int) (*port.PageImage, error) {
	meta, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	data, err := s.storage.Download(ctx, meta.S3Bucket, meta.S3Key)
	if err != nil {
		return nil, fmt.Errorf("downloading source file %s: %w", fileID, err)
	}

	if meta.FileType != domain.FileTypePDF {
		// Images are single-page by nature; any page value is accepted.
		return &port.PageImage{Data: data, ContentType: meta.ContentType}, nil
	}

	if page < 1 {
		return nil, domain.ErrPageRequired
	}
	if meta.Pages > 0 && page > meta.Pages {
		return nil, domain.ErrPageOutOfRange
	}

	pageData, err := pdfpage.ExtractPage(data, page)
	if err != nil {
		return nil, err
	}
	return &port.PageImage{Data: pageData, ContentType: "application/pdf"}, nil
}
