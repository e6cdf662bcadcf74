// Package memtree provides an in-memory, scriptable livetree.Source.
// Tests use it to replay the external tree's behaviors: bursty change
// notifications, reorders, detaches, and wholesale re-renders.
package memtree

import (
	"sync"

	"github.com/papercomputeco/catalog/pkg/livetree"
)

// Node is a scriptable live node.
type Node struct {
	mu          sync.Mutex
	text        string
	attrs       map[string]string
	selectors   []string
	scrolledTo  bool
	highlighted bool
}

// Text returns the node's text.
func (n *Node) Text() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.text
}

// SetText mutates the node's text, as a re-render would.
func (n *Node) SetText(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.text = text
}

// Attr returns an attribute value, or "".
func (n *Node) Attr(key string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.attrs[key]
}

// SetAttr sets an attribute.
func (n *Node) SetAttr(key, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attrs[key] = value
}

// ClearAttrs drops all attributes, as a node clone during re-render
// would.
func (n *Node) ClearAttrs() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attrs = map[string]string{}
}

// ScrollIntoView records that the node was scrolled to.
func (n *Node) ScrollIntoView() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scrolledTo = true
}

// ScrolledIntoView reports whether ScrollIntoView was called.
func (n *Node) ScrolledIntoView() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scrolledTo
}

// Highlight toggles the highlight state.
func (n *Node) Highlight(on bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.highlighted = on
}

// Highlighted reports the current highlight state.
func (n *Node) Highlighted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.highlighted
}

// Source is an in-memory tree.
type Source struct {
	mu           sync.Mutex
	nodes        []*Node
	location     string
	changes      chan struct{}
	scrollHeight int
	scrolls      []int
	closed       bool
}

// New creates an empty tree.
func New() *Source {
	return &Source{
		changes:      make(chan struct{}, 64),
		scrollHeight: 1000,
	}
}

// Append adds a node at the end of the tree. With no explicit selectors
// the node matches the primary default selector.
func (s *Source) Append(text string, selectors ...string) *Node {
	if len(selectors) == 0 {
		selectors = []string{livetree.DefaultSelectors[0]}
	}
	n := &Node{
		text:      text,
		attrs:     map[string]string{},
		selectors: selectors,
	}
	s.mu.Lock()
	s.nodes = append(s.nodes, n)
	s.mu.Unlock()
	return n
}

// SetOrder replaces the tree's node order, as the external UI reordering
// turns would.
func (s *Source) SetOrder(nodes ...*Node) {
	s.mu.Lock()
	s.nodes = append([]*Node(nil), nodes...)
	s.mu.Unlock()
}

// Detach removes a node from the tree without notifying.
func (s *Source) Detach(node *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.nodes {
		if n == node {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
}

// Select returns nodes matching the selector in tree order.
func (s *Source) Select(selector string) []livetree.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []livetree.Node
	for _, n := range s.nodes {
		for _, sel := range n.selectors {
			if sel == selector {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// Location returns the scripted navigation location.
func (s *Source) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// SetLocation scripts a navigation.
func (s *Source) SetLocation(location string) {
	s.mu.Lock()
	s.location = location
	s.mu.Unlock()
}

// Changes delivers scripted change notifications.
func (s *Source) Changes() <-chan struct{} {
	return s.changes
}

// Notify emits one change notification. Non-blocking: a full channel
// drops the notification, matching the at-least-once-per-burst contract.
// The send stays under the mutex so it cannot race Close's channel
// close.
func (s *Source) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// ScrollHeight returns the scripted scrollable height.
func (s *Source) ScrollHeight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollHeight
}

// SetScrollHeight scripts the scrollable height.
func (s *Source) SetScrollHeight(h int) {
	s.mu.Lock()
	s.scrollHeight = h
	s.mu.Unlock()
}

// ScrollTo records a viewport scroll.
func (s *Source) ScrollTo(offset int) {
	s.mu.Lock()
	s.scrolls = append(s.scrolls, offset)
	s.mu.Unlock()
}

// Scrolls returns the recorded viewport scroll offsets.
func (s *Source) Scrolls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.scrolls...)
}

// Close marks the source closed.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.changes)
	}
	return nil
}
