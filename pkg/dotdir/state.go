package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const stateFile = "state.json"

// WatchState is the persisted state of the last watch run: which
// snapshot file was being mirrored and which session was active when
// the watcher stopped. The sessions listing uses it to mark the
// current session.
type WatchState struct {
	// SnapshotPath is the mirrored DOM snapshot file being watched.
	SnapshotPath string `json:"snapshot_path"`

	// LastSessionID is the session that was active most recently.
	LastSessionID string `json:"last_session_id"`
}

// LoadWatchState loads the watch state from a target .catalog/state.json.
// Returns nil, nil if no state exists.
// If overrideDir is non-empty, it is used instead of the default
// ~/.catalog/ location.
func (m *Manager) LoadWatchState(overrideDir string) (*WatchState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, stateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading watch state: %w", err)
	}

	state := &WatchState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing watch state: %w", err)
	}

	return state, nil
}

// SaveWatchState persists the watch state to a target .catalog/state.json.
func (m *Manager) SaveWatchState(state *WatchState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil watch state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling watch state: %w", err)
	}

	path := filepath.Join(dir, stateFile)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // state file holds no secrets
		return fmt.Errorf("writing watch state: %w", err)
	}

	return nil
}

// ClearWatchState removes the state file. Returns nil if the file does
// not exist.
func (m *Manager) ClearWatchState(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, stateFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing watch state: %w", err)
	}

	return nil
}
