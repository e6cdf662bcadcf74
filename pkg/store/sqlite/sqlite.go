// Package sqlite implements store.Store on a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/catalog/pkg/catalog"
)

// The snapshot is a single keyed record, so the schema is one row: the
// serialized snapshot plus a fixed primary key.
const schema = `
CREATE TABLE IF NOT EXISTS snapshot (
	id   INTEGER PRIMARY KEY CHECK (id = 0),
	data TEXT NOT NULL
)`

// Store is a SQLite-backed snapshot store.
type Store struct {
	db *sql.DB
}

// New opens (and migrates) a SQLite-backed store. The dbPath can be a
// file path or ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Load reads the snapshot row. A missing row is an empty snapshot.
func (s *Store) Load(ctx context.Context) (catalog.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM snapshot WHERE id = 0").Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	snap := catalog.Snapshot{}
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return snap, nil
}

// Save replaces the snapshot row in a single statement.
func (s *Store) Save(ctx context.Context, snap catalog.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO snapshot (id, data) VALUES (0, ?) ON CONFLICT (id) DO UPDATE SET data = excluded.data",
		string(data),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot row.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshot"); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
