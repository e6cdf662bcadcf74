package engine

import "sync"

// Guard holds the active session identifier and a monotonically
// increasing epoch counter. The epoch is bumped on every session switch;
// asynchronous work started under an earlier epoch detects staleness by
// re-checking after every suspension point and aborts without side
// effects. This is the sole mechanism preventing cross-session data
// corruption.
type Guard struct {
	mu        sync.Mutex
	sessionID string
	epoch     uint64
}

// BeginSession atomically sets the active session and returns a new
// epoch strictly greater than any previously issued.
func (g *Guard) BeginSession(sessionID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessionID = sessionID
	g.epoch++
	return g.epoch
}

// Active returns the current session id and epoch.
func (g *Guard) Active() (string, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessionID, g.epoch
}

// ActiveSession returns the current session id.
func (g *Guard) ActiveSession() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessionID
}

// Stale reports whether work started for the given session and epoch has
// been superseded by a session switch.
func (g *Guard) Stale(sessionID string, epoch uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessionID != sessionID || g.epoch != epoch
}
