// Package memory provides the in-process identification store. Entries are
// write-once and read-mostly, so a map behind an RWMutex is sufficient;
// expired entries stay physically present and are reaped by nothing here.
package memory

import (
	"context"
	"sync"
	"time"

	"infograph/internal/domain"
	"infograph/internal/port"
)

// Store is an in-memory, TTL-aware implementation of
// port.IdentificationStore.
type Store struct {
	mu    sync.RWMutex
	items map[string]*domain.Identification
	now   func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces the wall clock, making expiry boundaries
// deterministic in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty identification store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		items: make(map[string]*domain.Identification),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ port.IdentificationStore = (*Store)(nil)

// Put stores an identification. Identifications are never updated in place.
func (s *Store) Put(_ context.Context, ident *domain.Identification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[ident.ID] = ident
	return nil
}

// Get returns the stored identification, domain.ErrIdentificationNotFound
// if the id was never stored, or domain.ErrIdentificationExpired at any
// time at or after the identification's expiry.
func (s *Store) Get(_ context.Context, id string) (*domain.Identification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ident, ok := s.items[id]
	if !ok {
		return nil, domain.ErrIdentificationNotFound
	}
	if !s.now().Before(ident.ExpiresAt) {
		return nil, domain.ErrIdentificationExpired
	}
	return ident, nil
}
