// Package store defines the persistence contract for captured sessions.
// The durable record is a single keyed snapshot; every write is a
// full-snapshot read-modify-write, so drivers never need partial-key
// transactions.
package store

import (
	"context"

	"github.com/papercomputeco/catalog/pkg/catalog"
)

// Store persists the full session snapshot in an opaque key-value
// backend. Load of a missing record returns an empty snapshot, not an
// error.
type Store interface {
	// Load returns the current snapshot.
	Load(ctx context.Context) (catalog.Snapshot, error)

	// Save replaces the snapshot in a single call.
	Save(ctx context.Context, snap catalog.Snapshot) error

	// Clear removes the snapshot record entirely. This is an
	// operator-triggered action; the capture engine never calls it.
	Clear(ctx context.Context) error

	// Close closes the store and releases any resources.
	Close() error
}
