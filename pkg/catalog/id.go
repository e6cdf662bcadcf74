package catalog

import (
	"io"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// sessionIDPattern matches the session id segment of a conversation
// location path: a 36-character lowercase hex-and-hyphen token.
var sessionIDPattern = regexp.MustCompile(`/chat/([a-f0-9-]{36})`)

// ExtractSessionID pulls the session id out of a location path.
// Returns "" when the location carries no session id (e.g. an
// interstitial non-session view).
func ExtractSessionID(location string) string {
	m := sessionIDPattern.FindStringSubmatch(strings.ToLower(location))
	if m == nil {
		return ""
	}
	return m[1]
}

// ValidSessionID reports whether id is a well-formed session identifier.
func ValidSessionID(id string) bool {
	if len(id) != 36 || id != strings.ToLower(id) {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// IDGenerator mints entry ids. Ids are ULIDs, so they embed the capture
// time and a random suffix and sort lexically by creation order.
type IDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewIDGenerator creates a generator with monotonic entropy.
func NewIDGenerator() *IDGenerator {
	seed := time.Now().UnixNano()
	return &IDGenerator{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0), //nolint:gosec // ids need uniqueness, not secrecy
	}
}

// NewEntryID mints an id stamped with the given capture time.
func (g *IDGenerator) NewEntryID(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}
