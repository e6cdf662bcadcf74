package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/catalog/pkg/catalog"
	"github.com/papercomputeco/catalog/pkg/livetree"
)

// ScrollTo finds (or estimates) the live position of a logical entry and
// highlights it. The fallback chain is increasingly approximate: a node
// already tagged with the entry id, then an exact normalized-text match
// against the stored entry, then an estimated-offset scroll followed by
// one retry after the settle delay. If no stage succeeds the operation
// silently completes — this is best-effort, not correctness-critical.
func (e *Engine) ScrollTo(ctx context.Context, entryID string) {
	if n := e.findTagged(entryID); n != nil {
		e.highlight(n)
		return
	}

	sessionID := e.guard.ActiveSession()
	if sessionID == "" {
		return
	}

	snap := e.store.Load(ctx)
	sess := snap[sessionID]
	if sess == nil {
		return
	}

	entry := sess.Find(entryID)
	if entry != nil {
		if n := e.findByText(entry.Text); n != nil {
			e.highlight(n)
			return
		}
	}

	idx := sess.IndexOf(entryID)
	if idx < 0 || len(sess.Entries) == 0 {
		return
	}

	offset := idx * e.src.ScrollHeight() / len(sess.Entries)
	e.logger.Debug("estimated scroll",
		zap.String("entry", short(entryID)),
		zap.Int("offset", offset),
	)
	e.src.ScrollTo(offset)

	select {
	case <-time.After(e.settleDelay):
	case <-ctx.Done():
		return
	}

	if n := e.findTagged(entryID); n != nil {
		e.highlight(n)
		return
	}
	if entry != nil {
		if n := e.findByText(entry.Text); n != nil {
			e.highlight(n)
		}
	}
}

// findTagged returns the live node tagged with the entry id, if any.
func (e *Engine) findTagged(entryID string) livetree.Node {
	e.scanMu.Lock()
	defer e.scanMu.Unlock()

	for _, n := range livetree.Discover(e.src, e.selectors) {
		if n.Attr(AttrEntryID) == entryID {
			return n
		}
	}
	return nil
}

// findByText returns the first live node whose normalized text equals
// the entry's.
func (e *Engine) findByText(text string) livetree.Node {
	e.scanMu.Lock()
	defer e.scanMu.Unlock()

	norm := catalog.Normalize(text)
	for _, n := range livetree.Discover(e.src, e.selectors) {
		if catalog.Normalize(n.Text()) == norm {
			return n
		}
	}
	return nil
}

// highlight scrolls the node into view and applies the transient
// highlight state.
func (e *Engine) highlight(n livetree.Node) {
	n.ScrollIntoView()
	n.Highlight(true)
	time.AfterFunc(e.highlightFor, func() { n.Highlight(false) })
}
