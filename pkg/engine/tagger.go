package engine

import "github.com/papercomputeco/catalog/pkg/livetree"

// Tag attribute keys placed on captured live nodes. They are a derived,
// best-effort cache correlating a node to persisted data — never
// authoritative — and are readable by any collaborator (the panel's
// click-to-scroll reads AttrEntryID).
const (
	// AttrEntryID carries the entry id a node was captured as.
	AttrEntryID = "data-catalog-id"

	// AttrSessionID carries the session a node belongs to. A node
	// stamped with a different session than the active one is foreign
	// and skipped by new captures.
	AttrSessionID = "data-catalog-session"
)

// Claim assigns an entry id to a previously untagged node. Returns false
// if the node already carries an entry id. Callers must hold the
// engine's scan lock: the claim is only race-free because scan-and-claim
// passes never overlap.
func Claim(n livetree.Node, entryID, sessionID string) bool {
	if n.Attr(AttrEntryID) != "" {
		return false
	}
	n.SetAttr(AttrEntryID, entryID)
	n.SetAttr(AttrSessionID, sessionID)
	return true
}

// Stamp marks a node as belonging to a session without claiming an entry
// id. Used when leaving a session so late notifications for still-mounted
// old nodes recognize them as foreign.
func Stamp(n livetree.Node, sessionID string) {
	if sessionID == "" {
		return
	}
	if n.Attr(AttrSessionID) == "" {
		n.SetAttr(AttrSessionID, sessionID)
	}
}

// IsForeign reports whether the node is tagged with a session other than
// sessionID.
func IsForeign(n livetree.Node, sessionID string) bool {
	tagged := n.Attr(AttrSessionID)
	return tagged != "" && tagged != sessionID
}
