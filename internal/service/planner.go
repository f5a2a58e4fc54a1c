package service

import (
	"context"
	"fmt"

	"infograph/internal/domain"
	"infograph/internal/port"
)

// ExtractionPlan is a resolved set of extraction targets plus the
// identification they came from.
type ExtractionPlan struct {
	Identification *domain.Identification
	Items          []domain.PlannedItem
}

// Planner resolves user selections against a stored identification.
// Selections are an allow-list: a detected item absent from them is
// implicitly deselected and produces no output.
type Planner struct {
	store port.IdentificationStore
}

// NewPlanner creates a Planner backed by the given identification store.
func NewPlanner(store port.IdentificationStore) *Planner {
	return &Planner{store: store}
}

// Plan resolves each selection in order. Expiry and not-found are the
// store's verdicts, passed through untouched.
func (p *Planner) Plan(ctx context.Context, identificationID string, selections []domain.ItemSelection) (*ExtractionPlan, error) {
	if len(selections) == 0 {
		return nil, domain.ErrEmptySelection
	}

	ident, err := p.store.Get(ctx, identificationID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.PlannedItem, 0, len(selections))
	for _, sel := range selections {
		if sel.ItemID == "" {
			return nil, fmt.Errorf("%w: selection has empty item_id", domain.ErrInvalidSelection)
		}

		detected, ok := ident.Item(sel.ItemID)
		if !ok {
			// Brand-new, user-authored target. Trusted by definition, so it
			// carries no confidence or warnings, but it must say where to look.
			if sel.BoundingBox == nil {
				return nil, fmt.Errorf("%w: selection %q matches no detected item and has no bounding box",
					domain.ErrInvalidSelection, sel.ItemID)
			}
			items = append(items, domain.PlannedItem{
				ItemID:      sel.ItemID,
				Kind:        selectionKind(sel.Kind, domain.ElementOther),
				Title:       selectionTitle(sel.Title, "User-specified element"),
				BoundingBox: *sel.BoundingBox,
				UserAdded:   true,
			})
			continue
		}

		item := domain.PlannedItem{
			ItemID:      detected.ItemID,
			Kind:        selectionKind(sel.Kind, detected.Kind),
			Title:       selectionTitle(sel.Title, detected.Title),
			BoundingBox: detected.BoundingBox,
			Confidence:  detected.Confidence,
			Warnings:    detected.Warnings,
		}
		// The detected geometry wins unless the user explicitly redrew it.
		if sel.BoundingBox != nil {
			item.BoundingBox = *sel.BoundingBox
		}
		items = append(items, item)
	}

	return &ExtractionPlan{Identification: ident, Items: items}, nil
}

func selectionKind(override, fallback domain.ElementKind) domain.ElementKind {
	if override != "" {
		return override
	}
	return fallback
}

func selectionTitle(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}
