// Package engine implements the capture-and-consistency core: it watches
// an externally-owned content tree, incrementally extracts user-authored
// entries, and maintains a consistent, de-duplicated, correctly-ordered
// per-session log under concurrent change notifications and session
// switches.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/catalog/pkg/catalog"
	"github.com/papercomputeco/catalog/pkg/eventstream"
	"github.com/papercomputeco/catalog/pkg/eventstream/nop"
	"github.com/papercomputeco/catalog/pkg/livetree"
	"github.com/papercomputeco/catalog/pkg/store"
)

const (
	// DefaultDebounce is the trailing-edge coalescing window for change
	// notifications.
	DefaultDebounce = 300 * time.Millisecond

	// DefaultSettleDelay is the wait after an estimated-offset scroll
	// before the locator retries its lookup chain.
	DefaultSettleDelay = 500 * time.Millisecond

	// DefaultHighlightFor is how long a located node stays highlighted.
	DefaultHighlightFor = 2 * time.Second

	// DefaultLocationPoll is the interval of the location poll that
	// backs session-change detection. The external tree's own
	// navigation is not reliably observable, so polling is the floor.
	DefaultLocationPoll = 500 * time.Millisecond
)

// DefaultAttachRescans are the compensating re-scan offsets after the
// engine first attaches: the external tree loads content asynchronously
// and its timing is not observable, so one fixed late pass catches what
// the initial pass missed.
var DefaultAttachRescans = []time.Duration{1500 * time.Millisecond}

// DefaultNavigateRescans are the re-scan offsets after a session switch.
var DefaultNavigateRescans = []time.Duration{time.Second}

// Config holds the engine's injected dependencies and timing knobs.
// Zero-valued timings fall back to the defaults above.
type Config struct {
	// Source is the attachment to the external tree.
	Source livetree.Source

	// Store is the persistence backend. The engine wraps it so every
	// call degrades to a safe default.
	Store store.Store

	// Selectors is the ordered discovery fallback list. Defaults to
	// livetree.DefaultSelectors.
	Selectors []string

	// Publisher receives an event per persisted capture batch.
	// Optional; defaults to the no-op publisher.
	Publisher eventstream.Publisher

	// OnRefresh is invoked after a capture batch is persisted so the
	// display layer can re-render. Optional.
	OnRefresh func(sessionID string)

	Debounce        time.Duration
	SettleDelay     time.Duration
	HighlightFor    time.Duration
	LocationPoll    time.Duration
	AttachRescans   []time.Duration
	NavigateRescans []time.Duration

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// Engine is one capture engine instance with an explicit lifecycle.
// All session state lives here, never in package globals.
type Engine struct {
	src       livetree.Source
	store     *store.Safe
	selectors []string
	publisher eventstream.Publisher
	onRefresh func(sessionID string)
	logger    *zap.Logger

	debounce        time.Duration
	settleDelay     time.Duration
	highlightFor    time.Duration
	locationPoll    time.Duration
	attachRescans   []time.Duration
	navigateRescans []time.Duration

	guard *Guard
	ids   *catalog.IDGenerator

	// scanMu serializes every scan-and-claim pass. Claim is only a safe
	// cooperative mutex because no scan runs concurrently with another;
	// this lock is the parallel-scheduler replacement for the original
	// single-threaded run-to-completion guarantee.
	scanMu sync.Mutex

	watchMu sync.Mutex
	watcher *watcher

	quitOnce sync.Once
	quit     chan struct{}
}

// New creates an engine from the given config.
func New(c *Config) (*Engine, error) {
	if c.Source == nil {
		return nil, errors.New("source is required")
	}
	if c.Store == nil {
		return nil, errors.New("store is required")
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	publisher := c.Publisher
	if publisher == nil {
		publisher = nop.New()
	}

	selectors := c.Selectors
	if len(selectors) == 0 {
		selectors = livetree.DefaultSelectors
	}

	e := &Engine{
		src:             c.Source,
		store:           store.NewSafe(c.Store, logger),
		selectors:       selectors,
		publisher:       publisher,
		onRefresh:       c.OnRefresh,
		logger:          logger,
		debounce:        defaultDuration(c.Debounce, DefaultDebounce),
		settleDelay:     defaultDuration(c.SettleDelay, DefaultSettleDelay),
		highlightFor:    defaultDuration(c.HighlightFor, DefaultHighlightFor),
		locationPoll:    defaultDuration(c.LocationPoll, DefaultLocationPoll),
		attachRescans:   c.AttachRescans,
		navigateRescans: c.NavigateRescans,
		guard:           &Guard{},
		ids:             catalog.NewIDGenerator(),
		quit:            make(chan struct{}),
	}
	if e.attachRescans == nil {
		e.attachRescans = DefaultAttachRescans
	}
	if e.navigateRescans == nil {
		e.navigateRescans = DefaultNavigateRescans
	}

	return e, nil
}

// Guard exposes the engine's consistency guard.
func (e *Engine) Guard() *Guard {
	return e.guard
}

// Start derives the initial session from the current location, kicks off
// its reconciliation, and starts the location poller. The poller is the
// level-triggered session-change signal: it is safe to deliver
// redundantly and a location with no derivable session id is ignored.
func (e *Engine) Start(ctx context.Context) {
	if id := catalog.ExtractSessionID(e.src.Location()); id != "" {
		epoch := e.guard.BeginSession(id)
		e.logger.Info("attached to session", zap.String("session", short(id)))
		go e.reconcile(ctx, id, epoch, e.attachRescans)
	}

	go e.pollLocation(ctx)
}

// Teardown stops the location poller and the change watcher. In-flight
// asynchronous work is not unwound; it aborts cooperatively at its next
// staleness checkpoint.
func (e *Engine) Teardown() {
	e.quitOnce.Do(func() { close(e.quit) })
	e.stopWatcher()
}

func (e *Engine) pollLocation(ctx context.Context) {
	ticker := time.NewTicker(e.locationPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.HandleLocationSignal(ctx)
		case <-e.quit:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) notifyRefresh(sessionID string) {
	if e.onRefresh != nil {
		e.onRefresh(sessionID)
	}
}

func defaultDuration(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return d
}

// short truncates an id for log output.
func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
