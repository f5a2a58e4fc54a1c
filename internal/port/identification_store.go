package port

import (
	"context"

	"infograph/internal/domain"
)

// IdentificationStore holds identify results for the confirm step.
// Identifications are write-once; Get must distinguish "never existed"
// (domain.ErrIdentificationNotFound) from "existed but aged out"
// (domain.ErrIdentificationExpired) so callers can give different guidance.
type IdentificationStore interface {
	Put(ctx context.Context, ident *domain.Identification) error
	Get(ctx context.Context, id string) (*domain.Identification, error)
}
