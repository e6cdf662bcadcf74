// Package catalog defines the domain model for captured conversation
// sessions: the persisted snapshot, its sessions, and their entries.
package catalog

import (
	"strings"
	"time"
)

const (
	// MaxTitleLen is the maximum length of a session title derived from
	// the first captured entry.
	MaxTitleLen = 60

	// MinEntryLen is the minimum trimmed text length for a capture to be
	// staged. Shorter captures are silently skipped.
	MinEntryLen = 2
)

// Entry is one captured user-authored message. Immutable after creation
// except for its position within the session's ordered entry list.
type Entry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Session is one logical conversation: an ordered log of entries plus
// display metadata. Timestamps are Unix milliseconds.
type Session struct {
	Title     string  `json:"title"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
	Entries   []Entry `json:"entries"`
}

// Snapshot is the full durable record: session id to session. A missing
// key in the store reads back as an empty Snapshot.
type Snapshot map[string]*Session

// Normalize strips leading and trailing whitespace. Entry deduplication
// and tag restoration both key on the normalized form.
func Normalize(text string) string {
	return strings.TrimSpace(text)
}

// Title derives a session title from its first entry's text.
func Title(text string) string {
	runes := []rune(Normalize(text))
	if len(runes) <= MaxTitleLen {
		return string(runes)
	}
	return string(runes[:MaxTitleLen])
}

// NewSession creates a session seeded from its first captured entry.
func NewSession(first Entry) *Session {
	return &Session{
		Title:     Title(first.Text),
		CreatedAt: first.Timestamp,
		UpdatedAt: first.Timestamp,
		Entries:   []Entry{},
	}
}

// Contains reports whether the session already holds an entry with the
// given id or the same normalized text. Two entries with equal normalized
// text are the same logical entry regardless of id.
func (s *Session) Contains(e Entry) bool {
	norm := Normalize(e.Text)
	for _, existing := range s.Entries {
		if existing.ID == e.ID || Normalize(existing.Text) == norm {
			return true
		}
	}
	return false
}

// IndexOf returns the position of the entry with the given id, or -1.
func (s *Session) IndexOf(entryID string) int {
	for i, e := range s.Entries {
		if e.ID == entryID {
			return i
		}
	}
	return -1
}

// Find returns the entry with the given id, or nil.
func (s *Session) Find(entryID string) *Entry {
	if i := s.IndexOf(entryID); i >= 0 {
		return &s.Entries[i]
	}
	return nil
}

// Clone deep-copies the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Entries = make([]Entry, len(s.Entries))
	copy(cp.Entries, s.Entries)
	return &cp
}

// Clone deep-copies the snapshot.
func (sn Snapshot) Clone() Snapshot {
	cp := make(Snapshot, len(sn))
	for id, sess := range sn {
		cp[id] = sess.Clone()
	}
	return cp
}

// Millis converts a time to the Unix-millisecond representation used
// throughout the persisted schema.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
