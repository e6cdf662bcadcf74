package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/catalog/pkg/catalog"
	"github.com/papercomputeco/catalog/pkg/livetree"
)

// HandleLocationSignal re-evaluates the current session id from the
// source's location. Safe to deliver redundantly. A location carrying no
// session id is ignored — the engine holds its last known session rather
// than wiping the display during transient navigation states.
//
// A detected switch runs in two lines. Displaying is synchronous: stamp
// the old session's still-mounted nodes as foreign, tear down the old
// watcher, swap the active session, and tell the display to render from
// whatever is cached. Reconciling is asynchronous and strictly after:
// restore persisted tags, capture, start the new watcher, then the
// delayed re-scans.
func (e *Engine) HandleLocationSignal(ctx context.Context) {
	id := catalog.ExtractSessionID(e.src.Location())
	if id == "" {
		return
	}

	cur := e.guard.ActiveSession()
	if id == cur {
		return
	}

	e.logger.Info("session switch",
		zap.String("from", short(cur)),
		zap.String("to", short(id)),
	)

	e.stampAll(cur)
	e.stopWatcher()
	epoch := e.guard.BeginSession(id)
	e.notifyRefresh(id)

	go e.reconcile(ctx, id, epoch, e.navigateRescans)
}

// reconcile is the asynchronous half of a session transition. Every
// stage re-checks the epoch issued at transition time; a superseding
// transition silently orphans the remaining stages.
func (e *Engine) reconcile(ctx context.Context, sessionID string, epoch uint64, rescans []time.Duration) {
	e.restoreTags(ctx, sessionID, epoch)
	if e.guard.Stale(sessionID, epoch) {
		return
	}

	e.CaptureNewEntries(ctx, sessionID)
	if e.guard.Stale(sessionID, epoch) {
		return
	}

	e.startWatcher(sessionID, epoch)

	// Fixed-schedule compensating re-scans for content that finishes
	// rendering after the initial pass. Bounded; content that never
	// appears is an expected, terminal miss.
	for _, delay := range rescans {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		case <-e.quit:
			return
		}

		if e.guard.Stale(sessionID, epoch) {
			return
		}
		e.restoreTags(ctx, sessionID, epoch)
		if e.guard.Stale(sessionID, epoch) {
			return
		}
		e.CaptureNewEntries(ctx, sessionID)
	}
}

// restoreTags re-applies persisted entry ids onto matching live nodes.
// Matching is by normalized text, not by index: stored order may
// legitimately differ from current tree order, and index matching would
// tag the wrong node.
func (e *Engine) restoreTags(ctx context.Context, sessionID string, epoch uint64) {
	snap := e.store.Load(ctx)
	if e.guard.Stale(sessionID, epoch) {
		return
	}

	sess := snap[sessionID]
	if sess == nil {
		return
	}

	e.scanMu.Lock()
	defer e.scanMu.Unlock()

	nodes := livetree.Discover(e.src, e.selectors)
	for _, entry := range sess.Entries {
		norm := catalog.Normalize(entry.Text)
		for _, n := range nodes {
			if n.Attr(AttrEntryID) != "" {
				continue
			}
			if catalog.Normalize(n.Text()) != norm {
				continue
			}
			n.SetAttr(AttrEntryID, entry.ID)
			n.SetAttr(AttrSessionID, sessionID)
			break
		}
	}
}

// stampAll marks every currently discoverable node with the given
// session id. Called while leaving a session, before the id swaps, so a
// late notification for the old session's still-mounted nodes skips
// them as foreign.
func (e *Engine) stampAll(sessionID string) {
	if sessionID == "" {
		return
	}

	e.scanMu.Lock()
	defer e.scanMu.Unlock()

	for _, n := range livetree.Discover(e.src, e.selectors) {
		Stamp(n, sessionID)
	}
}
