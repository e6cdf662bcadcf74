// Package eventstream defines transport-neutral events emitted after a
// capture batch is persisted, plus the publisher contract for shipping
// them to an event stream backend.
package eventstream

import (
	"time"

	"github.com/papercomputeco/catalog/pkg/catalog"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeEntriesCaptured is emitted after one or more entries are
	// persisted for a session.
	EventTypeEntriesCaptured = "catalog.entries.captured"
)

// EntriesCapturedEvent is the payload published after a capture batch
// lands in the store.
type EntriesCapturedEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	EmittedAt     time.Time       `json:"emitted_at"`
	SessionID     string          `json:"session_id"`
	SessionTitle  string          `json:"session_title"`
	Entries       []catalog.Entry `json:"entries"`
	TotalEntries  int             `json:"total_entries"`
}
