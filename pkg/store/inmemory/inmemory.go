// Package inmemory implements store.Store using an in-memory map.
package inmemory

import (
	"context"
	"sync"

	"github.com/papercomputeco/catalog/pkg/catalog"
)

// Store is an in-memory snapshot store. Safe for concurrent use.
// Loads and saves deep-copy the snapshot so callers never alias the
// stored state.
type Store struct {
	mu   sync.RWMutex
	snap catalog.Snapshot
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{snap: catalog.Snapshot{}}
}

// Load returns a deep copy of the current snapshot.
func (s *Store) Load(_ context.Context) (catalog.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone(), nil
}

// Save replaces the snapshot.
func (s *Store) Save(_ context.Context, snap catalog.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.Clone()
	return nil
}

// Clear removes everything.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = catalog.Snapshot{}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
