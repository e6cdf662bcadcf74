// Package livetree abstracts the externally-owned content tree that the
// capture engine watches. The tree is volatile: nodes may be reordered,
// detached, or re-rendered at any time, so references are only valid for
// immediate, synchronous use.
package livetree

// DefaultSelectors is the ordered fallback list for discovering
// user-authored turn nodes. The first selector yielding one or more
// matches wins; later selectors are never tried. Markup evolves under
// us, so zero matches is a degraded result, not an error.
var DefaultSelectors = []string{
	`[data-testid="user-message"]`,
	`[data-is-human-turn="true"]`,
	`[class*="HumanTurn"]`,
}

// Node is one live node in the external tree. Attribute access is the
// tag contract shared with collaborators: any of them may correlate a
// node with persisted data through its attributes.
type Node interface {
	// Text returns the node's raw text content.
	Text() string

	// Attr returns the attribute value, or "" when absent.
	Attr(key string) string

	// SetAttr sets an attribute on the node.
	SetAttr(key, value string)

	// ScrollIntoView brings the node into the visible viewport.
	ScrollIntoView()

	// Highlight toggles the transient visual highlight state.
	Highlight(on bool)
}

// Source is one attachment to an external tree.
type Source interface {
	// Select returns all nodes matching the selector, in tree order.
	Select(selector string) []Node

	// Location returns the current navigation location, from which the
	// active session id is derived.
	Location() string

	// Changes delivers structural change notifications. Notifications
	// are bursty and unordered; consumers are expected to coalesce.
	Changes() <-chan struct{}

	// ScrollHeight returns the total scrollable height of the tree's
	// viewport.
	ScrollHeight() int

	// ScrollTo scrolls the viewport to the given offset.
	ScrollTo(offset int)

	// Close detaches from the tree and releases any resources.
	Close() error
}

// Discover enumerates the currently discoverable user-entry nodes by
// trying each selector in order and returning the first non-empty
// result.
func Discover(src Source, selectors []string) []Node {
	if len(selectors) == 0 {
		selectors = DefaultSelectors
	}
	for _, sel := range selectors {
		if nodes := src.Select(sel); len(nodes) > 0 {
			return nodes
		}
	}
	return nil
}
