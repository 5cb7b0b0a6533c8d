package catalog

import (
	"sync"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/domain"
)

// Store holds the current catalog snapshot. Readers get a consistent
// snapshot; the refresh worker swaps the whole catalog at once.
type Store struct {
	mu       sync.RWMutex
	catalog  domain.Catalog
	loadedAt time.Time
}

// NewStore creates a store holding the empty catalog
func NewStore() *Store {
	return &Store{catalog: domain.EmptyCatalog()}
}

// Get returns the current catalog snapshot
func (s *Store) Get() domain.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Set replaces the catalog snapshot
func (s *Store) Set(catalog domain.Catalog, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
	s.loadedAt = now
}

// LoadedAt returns when the current snapshot was loaded; zero when the
// store still holds the initial empty catalog
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
