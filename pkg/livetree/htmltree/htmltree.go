// Package htmltree implements livetree.Source over a mirrored DOM
// snapshot: an HTML file that an external browser helper keeps current.
// File writes surface as structural change notifications via fsnotify,
// and the page location is read from a <meta name="catalog-location">
// element, so navigation is observable by re-reading the file.
package htmltree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/papercomputeco/catalog/pkg/livetree"
)

// rowHeight approximates the rendered height of one element for scroll
// offset estimation. The real panel owns actual geometry; this source
// only has to produce a proportional offset.
const rowHeight = 24

// Node is a parsed element of the mirrored snapshot. The file is
// re-parsed on every change, so tags set on a node live in the source's
// sidecar keyed by normalized text — the same way dataset attributes
// survive the external UI cloning a node during re-render.
type Node struct {
	src   *Source
	text  string
	attrs map[string]string
}

// Text returns the element's concatenated text content.
func (n *Node) Text() string {
	return n.text
}

// Attr returns a markup attribute or a sidecar tag, or "".
func (n *Node) Attr(key string) string {
	if v, ok := n.attrs[key]; ok {
		return v
	}
	return n.src.tag(n.text, key)
}

// SetAttr records a sidecar tag for the node.
func (n *Node) SetAttr(key, value string) {
	n.src.setTag(n.text, key, value)
}

// ScrollIntoView is a best-effort no-op for a file-backed tree.
func (n *Node) ScrollIntoView() {}

// Highlight is a best-effort no-op for a file-backed tree.
func (n *Node) Highlight(_ bool) {}

// Source watches one mirrored snapshot file.
type Source struct {
	path    string
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	changes chan struct{}

	mu        sync.Mutex
	doc       *html.Node
	elemCount int
	location  string
	tags      map[string]map[string]string
	closed    bool
}

// New attaches to the snapshot file at path. The file does not have to
// exist yet; its directory is watched so a later create is picked up.
func New(path string, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating snapshot watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching snapshot dir: %w", err)
	}

	s := &Source{
		path:    path,
		logger:  logger,
		watcher: watcher,
		changes: make(chan struct{}, 64),
		tags:    map[string]map[string]string{},
	}

	s.reload()
	go s.run()

	return s, nil
}

// run forwards snapshot file writes as change notifications.
func (s *Source) run() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.reload()
			s.notify()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("snapshot watcher error", zap.Error(err))
		}
	}
}

// notify sends under the mutex so Close cannot close the channel
// between the closed check and the send. The send is non-blocking, so
// holding the lock here never stalls.
func (s *Source) notify() {
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

// reload re-parses the snapshot file. A missing or malformed file
// degrades to an empty tree.
func (s *Source) reload() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.mu.Lock()
		s.doc = nil
		s.elemCount = 0
		s.mu.Unlock()
		if !os.IsNotExist(err) {
			s.logger.Warn("reading snapshot", zap.Error(err))
		}
		return
	}

	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		s.logger.Warn("parsing snapshot", zap.Error(err))
		return
	}

	count := 0
	location := ""
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			count++
			if n.Data == "meta" && attrValue(n, "name") == "catalog-location" {
				location = attrValue(n, "content")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	s.mu.Lock()
	s.doc = doc
	s.elemCount = count
	s.location = location
	s.mu.Unlock()
}

// Select returns elements matching the selector in document order. An
// unparsable selector matches nothing. The walk does not descend into a
// match: user-turn elements do not nest, so the first matching ancestor
// wins.
func (s *Source) Select(raw string) []livetree.Node {
	sel, err := cascadia.Parse(raw)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()
	if doc == nil {
		return nil
	}

	var out []livetree.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && sel.Match(n) {
			attrs := make(map[string]string, len(n.Attr))
			for _, a := range n.Attr {
				attrs[a.Key] = a.Val
			}
			out = append(out, &Node{
				src:   s,
				text:  textContent(n),
				attrs: attrs,
			})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

// Location returns the page location mirrored into the snapshot.
func (s *Source) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// Changes delivers change notifications derived from file writes.
func (s *Source) Changes() <-chan struct{} {
	return s.changes
}

// ScrollHeight estimates the scrollable height from the element count.
func (s *Source) ScrollHeight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elemCount * rowHeight
}

// ScrollTo records the requested offset. A file-backed tree has no real
// viewport; the offset only matters for the locator's estimate chain.
func (s *Source) ScrollTo(offset int) {
	s.logger.Debug("scroll requested", zap.Int("offset", offset))
}

// Close stops watching the snapshot file. The channel close happens
// under the same mutex as notify's send, so a snapshot write landing
// during teardown cannot hit a closed channel.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.changes)
	s.mu.Unlock()

	return s.watcher.Close()
}

// tag reads a sidecar tag for a node's normalized text.
func (s *Source) tag(text, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.tags[strings.TrimSpace(text)]; ok {
		return m[key]
	}
	return ""
}

// setTag writes a sidecar tag for a node's normalized text.
func (s *Source) setTag(text, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	norm := strings.TrimSpace(text)
	m, ok := s.tags[norm]
	if !ok {
		m = map[string]string{}
		s.tags[norm] = m
	}
	m[key] = value
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
