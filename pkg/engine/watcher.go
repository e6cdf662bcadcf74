package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// watcher coalesces bursts of change notifications: each notification
// resets a trailing-edge timer, and when the timer fires the capture
// callback runs exactly once for the accumulated burst.
type watcher struct {
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func newWatcher(events <-chan struct{}, window time.Duration, fire func()) *watcher {
	w := &watcher{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go w.run(events, window, fire)
	return w
}

func (w *watcher) run(events <-chan struct{}, window time.Duration, fire func()) {
	defer close(w.done)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(window)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			fire()
		case <-w.quit:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// stop cancels any pending timer and stops consuming notifications.
func (w *watcher) stop() {
	w.once.Do(func() { close(w.quit) })
	<-w.done
}

// startWatcher subscribes to the source's change notifications for the
// given session. The session id is captured by closure here, at
// subscribe time — it is never re-read from the guard at fire time. If
// the session has changed by then, the capture pass's own guard makes
// the call a safe no-op, and a fresh watcher for the new session is
// already running.
//
// Staleness is re-checked under watchMu: a reconcile goroutine can be
// preempted between its last epoch check and this call, and by the time
// it resumes a fresher reconcile may already have installed the active
// session's watcher. Replacing that watcher with one whose closure
// captures a superseded session would leave the active session
// unwatched, so a stale caller backs off here instead.
func (e *Engine) startWatcher(sessionID string, epoch uint64) {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.guard.Stale(sessionID, epoch) {
		return
	}

	if e.watcher != nil {
		e.watcher.stop()
	}

	e.logger.Debug("watcher started", zap.String("session", short(sessionID)))
	e.watcher = newWatcher(e.src.Changes(), e.debounce, func() {
		e.CaptureNewEntries(context.Background(), sessionID)
	})
}

// stopWatcher cancels the pending debounce timer and unsubscribes.
// Idempotent.
func (e *Engine) stopWatcher() {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.watcher != nil {
		e.watcher.stop()
		e.watcher = nil
	}
}
