package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"infograph/internal/config"
	"infograph/internal/domain"
	"infograph/internal/port"
	"infograph/internal/repair"
	"infograph/internal/vision"
)

// IdentifyInput names the file and page to run identification against.
type IdentifyInput struct {
	FileID uuid.UUID
	Page   int
}

// IdentificationService runs the identify phase: one model call per
// (file, page) that enumerates the visual elements present.
type IdentificationService interface {
	Identify(ctx context.Context, input IdentifyInput) (*domain.Identification, error)
	GetByID(ctx context.Context, identificationID string) (*domain.Identification, error)
}

type identificationService struct {
	pages port.PageSource
	model port.VisionModel
	store port.IdentificationStore
	cfg   *config.VisionConfig
	now   func() time.Time
}

// NewIdentificationService creates a new IdentificationService implementation.
func NewIdentificationService(
	pages port.PageSource,
	model port.VisionModel,
	store port.IdentificationStore,
	cfg *config.VisionConfig,
) IdentificationService {
	return &identificationService{
		pages: pages,
		model: model,
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// identifiedItem is the loose per-element shape the model replies with.
type identifiedItem struct {
	Type        string             `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	DataPreview string             `json:"data_preview"`
	BBox        domain.BoundingBox `json:"bbox"`
	Confidence  *float64           `json:"confidence"`
	Warnings    []string           `json:"warnings"`
}

type identificationReply struct {
	DetectedItems []identifiedItem `json:"detected_items"`
	ImageWidth    int              `json:"image_width"`
	ImageHeight   int              `json:"image_height"`
}

// Identify sends exactly one model call. There is no internal retry here:
// a failed identify is surfaced immediately and retrying is the caller's
// decision.
func (s *identificationService) Identify(ctx context.Context, input IdentifyInput) (*domain.Identification, error) {
	if !s.cfg.Configured() {
		return nil, domain.ErrVisionNotConfigured
	}

	img, err := s.pages.Fetch(ctx, input.FileID, input.Page)
	if err != nil {
		return nil, err
	}

	log.Printf("identificationService.Identify: analyzing file %s page %d (%s, %d bytes)",
		input.FileID, input.Page, img.ContentType, len(img.Data))

	reply, err := s.model.Complete(ctx, port.CompletionInput{
		Prompt:      vision.BuildIdentificationPrompt(),
		Image:       img.Data,
		ContentType: img.ContentType,
	})
	if err != nil {
		return nil, err
	}

	var parsed identificationReply
	if err := repair.Decode(reply, &parsed); err != nil {
		return nil, err
	}

	dims := domain.ImageDimensions{Width: parsed.ImageWidth, Height: parsed.ImageHeight}
	if dims.Width <= 0 {
		dims.Width = 1000
	}
	if dims.Height <= 0 {
		dims.Height = 800
	}

	createdAt := s.now().UTC()
	ident := &domain.Identification{
		ID:              newID("ident"),
		Source:          domain.SourceReference{FileID: input.FileID, Page: input.Page},
		ImageDimensions: dims,
		Items:           buildDetectedItems(parsed.DetectedItems, dims),
		CreatedAt:       createdAt,
		ExpiresAt:       createdAt.Add(s.cfg.TTL()),
	}

	if err := s.store.Put(ctx, ident); err != nil {
		return nil, fmt.Errorf("storing identification: %w", err)
	}

	log.Printf("identificationService.Identify: identified %d elements in file %s page %d (id %s)",
		len(ident.Items), input.FileID, input.Page, ident.ID)
	return ident, nil
}

func (s *identificationService) GetByID(ctx context.Context, identificationID string) (*domain.Identification, error) {
	return s.store.Get(ctx, identificationID)
}

func buildDetectedItems(raw []identifiedItem, dims domain.ImageDimensions) []domain.DetectedItem {
	items := make([]domain.DetectedItem, 0, len(raw))
	for i, r := range raw {
		bbox := r.BBox
		// The model occasionally omits box extents entirely; give the
		// element a visible default before clamping.
		if bbox.Width == 0 {
			bbox.Width = 100
		}
		if bbox.Height == 0 {
			bbox.Height = 100
		}
		bbox = bbox.ClampTo(dims)

		confidence := 0.5
		if r.Confidence != nil {
			confidence = *r.Confidence
		}
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}

		warnings := r.Warnings
		if warnings == nil {
			warnings = []string{}
		}

		items = append(items, domain.DetectedItem{
			ItemID:      fmt.Sprintf("item-%d", i+1),
			Kind:        domain.ParseElementKind(r.Type),
			Title:       r.Title,
			Description: r.Description,
			DataPreview: r.DataPreview,
			BoundingBox: bbox,
			Confidence:  confidence,
			Warnings:    warnings,
		})
	}
	return items
}
