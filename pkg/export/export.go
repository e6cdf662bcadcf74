// Package export renders captured sessions for consumers outside the
// engine: file export, API responses, and clipboard-style text.
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/papercomputeco/catalog/pkg/catalog"
)

// Format selects an output rendering.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatText, "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown export format: %q (available: json, markdown, text)", s)
	}
}

// sessionDoc is the JSON shape for a single exported session.
type sessionDoc struct {
	SessionID string          `json:"session_id"`
	Title     string          `json:"title"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
	Entries   []catalog.Entry `json:"entries"`
}

// Render renders one session in the given format. When selectedIDs is
// non-empty only matching entries are included, in the session's stored
// order regardless of selection order.
func Render(sessionID string, sess *catalog.Session, selectedIDs []string, format Format) (string, error) {
	if sess == nil {
		return "", fmt.Errorf("cannot render nil session")
	}

	entries := selectEntries(sess, selectedIDs)

	switch format {
	case FormatJSON:
		doc := sessionDoc{
			SessionID: sessionID,
			Title:     sess.Title,
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
			Entries:   entries,
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding session: %w", err)
		}
		return string(data), nil

	case FormatMarkdown:
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", sess.Title)
		for i, e := range entries {
			fmt.Fprintf(&b, "%d. %s *(%s)*\n", i+1, e.Text, stamp(e.Timestamp))
		}
		return b.String(), nil

	case FormatText:
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n\n", sess.Title)
		for _, e := range entries {
			fmt.Fprintf(&b, "[%s] %s\n", stamp(e.Timestamp), e.Text)
		}
		return b.String(), nil

	default:
		return "", fmt.Errorf("unknown export format: %q", format)
	}
}

// RenderSnapshot renders the whole snapshot as a single JSON document,
// sessions ordered by most recent activity first.
func RenderSnapshot(snap catalog.Snapshot) (string, error) {
	docs := make([]sessionDoc, 0, len(snap))
	for id, sess := range snap {
		docs = append(docs, sessionDoc{
			SessionID: id,
			Title:     sess.Title,
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
			Entries:   sess.Entries,
		})
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UpdatedAt != docs[j].UpdatedAt {
			return docs[i].UpdatedAt > docs[j].UpdatedAt
		}
		return docs[i].SessionID < docs[j].SessionID
	})

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return string(data), nil
}

// FileName returns the default export file name for the given day, e.g.
// "catalog_2026-08-30.json".
func FileName(t time.Time) string {
	return fmt.Sprintf("catalog_%s.json", t.UTC().Format("2006-01-02"))
}

func selectEntries(sess *catalog.Session, selectedIDs []string) []catalog.Entry {
	if len(selectedIDs) == 0 {
		out := make([]catalog.Entry, len(sess.Entries))
		copy(out, sess.Entries)
		return out
	}

	want := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		want[id] = true
	}

	var out []catalog.Entry
	for _, e := range sess.Entries {
		if want[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

func stamp(millis int64) string {
	return time.UnixMilli(millis).UTC().Format("2006-01-02 15:04")
}
