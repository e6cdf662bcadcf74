// Package badgerstore implements store.Store on a Badger key-value
// database.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/papercomputeco/catalog/pkg/catalog"
)

var snapshotKey = []byte("catalog/snapshot")

// Store is a Badger-backed snapshot store.
type Store struct {
	db *badger.DB
}

// New opens a Badger-backed store rooted at dirPath.
func New(dirPath string) (*Store, error) {
	opts := badger.DefaultOptions(dirPath).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}

	return &Store{db: db}, nil
}

// Load reads the snapshot record. A missing key is an empty snapshot.
func (s *Store) Load(_ context.Context) (catalog.Snapshot, error) {
	snap := catalog.Snapshot{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return snap, nil
}

// Save replaces the snapshot record.
func (s *Store) Save(_ context.Context, snap catalog.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	})
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot record.
func (s *Store) Clear(_ context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(snapshotKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
