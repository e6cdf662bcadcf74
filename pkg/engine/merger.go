package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/catalog/pkg/catalog"
	"github.com/papercomputeco/catalog/pkg/eventstream"
	"github.com/papercomputeco/catalog/pkg/livetree"
)

// CaptureNewEntries runs one capture pass for the session: scan and
// claim new nodes synchronously, then merge the staged batch into the
// persisted snapshot with a single load and a single save. Staleness is
// re-checked after every store suspension point; a superseded pass
// returns early with no side effects.
func (e *Engine) CaptureNewEntries(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if e.guard.ActiveSession() != sessionID {
		return
	}
	if !e.store.Available() {
		return
	}

	batch, treeTexts := e.scanAndClaim(sessionID)

	// Most notifications yield nothing new; skipping the store round
	// trip keeps a no-op scan cheap.
	if len(batch) == 0 {
		return
	}

	if e.guard.ActiveSession() != sessionID {
		return
	}

	snap := e.store.Load(ctx)

	if e.guard.ActiveSession() != sessionID {
		return
	}

	sess := snap[sessionID]
	if sess == nil {
		sess = catalog.NewSession(batch[0])
		snap[sessionID] = sess
	}

	var added []catalog.Entry
	for _, entry := range batch {
		if sess.Contains(entry) {
			continue
		}
		sess.Entries = append(sess.Entries, entry)
		sess.UpdatedAt = entry.Timestamp
		added = append(added, entry)
	}

	// Normalize persisted order to the tree order observed during the
	// scan. This also self-heals any historical ordering defects.
	resortEntries(sess, treeTexts)

	e.store.Save(ctx, snap)

	e.logger.Debug("capture pass persisted",
		zap.String("session", short(sessionID)),
		zap.Int("staged", len(batch)),
		zap.Int("added", len(added)),
	)

	if len(added) > 0 {
		e.publishCapture(ctx, sessionID, sess, added)
	}
	e.notifyRefresh(sessionID)
}

// scanAndClaim enumerates discoverable user-entry nodes, claims the
// untagged ones, and stages them. The pass holds the scan lock for its
// whole duration, so a concurrent pass sees already-claimed nodes and
// skips them. Returns the staged batch and the normalized text of every
// discovered node in tree order.
func (e *Engine) scanAndClaim(sessionID string) ([]catalog.Entry, []string) {
	e.scanMu.Lock()
	defer e.scanMu.Unlock()

	nodes := livetree.Discover(e.src, e.selectors)

	var batch []catalog.Entry
	texts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		text := catalog.Normalize(n.Text())
		texts = append(texts, text)

		if IsForeign(n, sessionID) {
			continue
		}
		if n.Attr(AttrEntryID) != "" {
			continue
		}
		if len([]rune(text)) < catalog.MinEntryLen {
			continue
		}

		now := time.Now()
		id := e.ids.NewEntryID(now)
		if !Claim(n, id, sessionID) {
			continue
		}
		batch = append(batch, catalog.Entry{
			ID:        id,
			Text:      text,
			Timestamp: catalog.Millis(now),
		})
	}

	return batch, texts
}

// resortEntries reorders the session's entries to match the given tree
// order by normalized text. Entries not currently matchable in the tree
// go to the end, stable relative to each other.
func resortEntries(sess *catalog.Session, treeTexts []string) {
	index := make(map[string]int, len(treeTexts))
	for i, t := range treeTexts {
		if _, ok := index[t]; !ok {
			index[t] = i
		}
	}

	pos := func(e catalog.Entry) int {
		if i, ok := index[catalog.Normalize(e.Text)]; ok {
			return i
		}
		return math.MaxInt
	}

	sort.SliceStable(sess.Entries, func(i, j int) bool {
		return pos(sess.Entries[i]) < pos(sess.Entries[j])
	})
}

func (e *Engine) publishCapture(ctx context.Context, sessionID string, sess *catalog.Session, added []catalog.Entry) {
	event := &eventstream.EntriesCapturedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeEntriesCaptured,
		EventID:       ulid.Make().String(),
		EmittedAt:     time.Now().UTC(),
		SessionID:     sessionID,
		SessionTitle:  sess.Title,
		Entries:       added,
		TotalEntries:  len(sess.Entries),
	}

	if err := e.publisher.PublishCapture(ctx, event); err != nil {
		e.logger.Warn("publishing capture event",
			zap.String("session", short(sessionID)),
			zap.Error(err),
		)
	}
}
