package engine_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/catalog/pkg/catalog"
	"github.com/papercomputeco/catalog/pkg/engine"
	"github.com/papercomputeco/catalog/pkg/eventstream"
	"github.com/papercomputeco/catalog/pkg/livetree/memtree"
	"github.com/papercomputeco/catalog/pkg/store"
	"github.com/papercomputeco/catalog/pkg/store/inmemory"
)

const (
	session1 = "0c7f94f2-58a1-4cbe-90d5-1f2ce1f0aa11"
	session2 = "1d8e05a3-69b2-4dcf-a1e6-2a3df2a1bb22"
)

func chatURL(id string) string {
	return "https://claude.ai/chat/" + id
}

// recordingPublisher records capture events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.EntriesCapturedEvent
}

func (p *recordingPublisher) PublishCapture(_ context.Context, e *eventstream.EntriesCapturedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) all() []*eventstream.EntriesCapturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*eventstream.EntriesCapturedEvent(nil), p.events...)
}

// failingStore always errors, standing in for a vanished backing host.
type failingStore struct{}

func (failingStore) Load(context.Context) (catalog.Snapshot, error) {
	return nil, errors.New("host gone")
}
func (failingStore) Save(context.Context, catalog.Snapshot) error { return errors.New("host gone") }
func (failingStore) Clear(context.Context) error                  { return errors.New("host gone") }
func (failingStore) Close() error                                 { return nil }

// gatedStore wraps an inner store and parks Load or Save until the test
// releases the matching gate, holding a capture pass open mid-flight.
// A nil entered channel leaves that call ungated.
type gatedStore struct {
	inner       store.Store
	loadEntered chan struct{}
	loadRelease chan struct{}
	saveEntered chan struct{}
	saveRelease chan struct{}
}

func (g *gatedStore) Load(ctx context.Context) (catalog.Snapshot, error) {
	if g.loadEntered != nil {
		g.loadEntered <- struct{}{}
		<-g.loadRelease
	}
	return g.inner.Load(ctx)
}

func (g *gatedStore) Save(ctx context.Context, snap catalog.Snapshot) error {
	if g.saveEntered != nil {
		g.saveEntered <- struct{}{}
		<-g.saveRelease
	}
	return g.inner.Save(ctx, snap)
}

func (g *gatedStore) Clear(ctx context.Context) error { return g.inner.Clear(ctx) }
func (g *gatedStore) Close() error                    { return g.inner.Close() }

var _ = Describe("Engine", func() {
	var (
		src       *memtree.Source
		storer    *inmemory.Store
		publisher *recordingPublisher
		eng       *engine.Engine
		ctx       context.Context
	)

	newEngine := func(s *memtree.Source) *engine.Engine {
		e, err := engine.New(&engine.Config{
			Source:          s,
			Store:           storer,
			Publisher:       publisher,
			Debounce:        20 * time.Millisecond,
			SettleDelay:     100 * time.Millisecond,
			HighlightFor:    25 * time.Millisecond,
			LocationPoll:    10 * time.Millisecond,
			AttachRescans:   []time.Duration{40 * time.Millisecond},
			NavigateRescans: []time.Duration{40 * time.Millisecond},
		})
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	load := func() catalog.Snapshot {
		snap, err := storer.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		return snap
	}

	BeforeEach(func() {
		src = memtree.New()
		storer = inmemory.New()
		publisher = &recordingPublisher{}
		ctx = context.Background()
		eng = newEngine(src)
	})

	AfterEach(func() {
		eng.Teardown()
		src.Close()
	})

	Describe("New", func() {
		It("requires a source", func() {
			_, err := engine.New(&engine.Config{Store: storer})
			Expect(err).To(HaveOccurred())
		})

		It("requires a store", func() {
			_, err := engine.New(&engine.Config{Source: src})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("CaptureNewEntries", func() {
		BeforeEach(func() {
			eng.Guard().BeginSession(session1)
		})

		It("captures discoverable entries in tree order", func() {
			src.Append("How do goroutines work?")
			src.Append("What about channels?")

			eng.CaptureNewEntries(ctx, session1)

			sess := load()[session1]
			Expect(sess).NotTo(BeNil())
			Expect(sess.Entries).To(HaveLen(2))
			Expect(sess.Entries[0].Text).To(Equal("How do goroutines work?"))
			Expect(sess.Entries[1].Text).To(Equal("What about channels?"))
		})

		It("titles the session from its first entry, truncated", func() {
			long := "This is a very long first question that should be cut down to the title limit for display"
			src.Append(long)

			eng.CaptureNewEntries(ctx, session1)

			sess := load()[session1]
			Expect([]rune(sess.Title)).To(HaveLen(catalog.MaxTitleLen))
			Expect(long).To(HavePrefix(sess.Title))
		})

		It("skips entries below the minimum length", func() {
			src.Append("a")
			src.Append("ok")

			eng.CaptureNewEntries(ctx, session1)

			sess := load()[session1]
			Expect(sess.Entries).To(HaveLen(1))
			Expect(sess.Entries[0].Text).To(Equal("ok"))
		})

		It("tags claimed nodes with entry and session ids", func() {
			n := src.Append("How do goroutines work?")

			eng.CaptureNewEntries(ctx, session1)

			Expect(n.Attr(engine.AttrSessionID)).To(Equal(session1))
			entryID := n.Attr(engine.AttrEntryID)
			Expect(entryID).NotTo(BeEmpty())
			Expect(load()[session1].Find(entryID)).NotTo(BeNil())
		})

		It("collapses text-identical entries into one logical entry", func() {
			src.Append("same question")
			src.Append("same question")

			eng.CaptureNewEntries(ctx, session1)

			sess := load()[session1]
			Expect(sess.Entries).To(HaveLen(1))
		})

		It("does not duplicate entries when the tree re-renders", func() {
			n1 := src.Append("How do goroutines work?")
			n2 := src.Append("What about channels?")
			eng.CaptureNewEntries(ctx, session1)
			updatedAt := load()[session1].UpdatedAt

			// A re-render clones nodes and drops the tags.
			n1.ClearAttrs()
			n2.ClearAttrs()
			eng.CaptureNewEntries(ctx, session1)

			sess := load()[session1]
			Expect(sess.Entries).To(HaveLen(2))
			Expect(sess.UpdatedAt).To(Equal(updatedAt))
		})

		It("converges stored order to tree order", func() {
			a := src.Append("first question")
			b := src.Append("second question")
			eng.CaptureNewEntries(ctx, session1)

			// The tree reorders and grows.
			c := src.Append("third question")
			src.SetOrder(c, b, a)
			eng.CaptureNewEntries(ctx, session1)

			sess := load()[session1]
			texts := []string{sess.Entries[0].Text, sess.Entries[1].Text, sess.Entries[2].Text}
			Expect(texts).To(Equal([]string{"third question", "second question", "first question"}))
		})

		It("keeps unmatched stored entries at the end", func() {
			a := src.Append("kept question")
			src.Append("vanishing question")
			eng.CaptureNewEntries(ctx, session1)

			src.SetOrder(a)
			src.Append("new question")
			eng.CaptureNewEntries(ctx, session1)

			sess := load()[session1]
			Expect(sess.Entries[len(sess.Entries)-1].Text).To(Equal("vanishing question"))
		})

		It("ignores foreign nodes", func() {
			n := src.Append("someone else's question")
			engine.Stamp(n, session2)

			eng.CaptureNewEntries(ctx, session1)

			Expect(load()[session1]).To(BeNil())
		})

		It("is a no-op for a non-active session", func() {
			src.Append("How do goroutines work?")
			eng.CaptureNewEntries(ctx, session2)
			Expect(load()).To(BeEmpty())
		})

		It("publishes one event per persisted batch", func() {
			src.Append("How do goroutines work?")
			src.Append("What about channels?")
			eng.CaptureNewEntries(ctx, session1)

			events := publisher.all()
			Expect(events).To(HaveLen(1))
			Expect(events[0].SessionID).To(Equal(session1))
			Expect(events[0].Entries).To(HaveLen(2))
			Expect(events[0].TotalEntries).To(Equal(2))
			Expect(events[0].EventType).To(Equal(eventstream.EventTypeEntriesCaptured))

			// A pass that adds nothing publishes nothing.
			eng.CaptureNewEntries(ctx, session1)
			Expect(publisher.all()).To(HaveLen(1))
		})
	})

	Describe("store degradation", func() {
		It("survives a vanished backing store", func() {
			broken, err := engine.New(&engine.Config{
				Source: src,
				Store:  failingStore{},
			})
			Expect(err).NotTo(HaveOccurred())
			defer broken.Teardown()

			broken.Guard().BeginSession(session1)
			src.Append("How do goroutines work?")

			// First pass trips the availability flag via its load;
			// later passes skip the store entirely. Neither panics.
			broken.CaptureNewEntries(ctx, session1)
			broken.CaptureNewEntries(ctx, session1)
		})
	})

	Describe("Guard", func() {
		It("invalidates prior epochs on session begin", func() {
			e1 := eng.Guard().BeginSession(session1)
			Expect(eng.Guard().Stale(session1, e1)).To(BeFalse())

			e2 := eng.Guard().BeginSession(session2)
			Expect(eng.Guard().Stale(session1, e1)).To(BeTrue())
			Expect(eng.Guard().Stale(session2, e2)).To(BeFalse())
			Expect(e2).To(BeNumerically(">", e1))
		})

		It("treats a re-begin of the same session as a new epoch", func() {
			e1 := eng.Guard().BeginSession(session1)
			e2 := eng.Guard().BeginSession(session1)
			Expect(eng.Guard().Stale(session1, e1)).To(BeTrue())
			Expect(eng.Guard().Stale(session1, e2)).To(BeFalse())
		})
	})

	Describe("Start and the change watcher", func() {
		It("attaches to the session derived from the location", func() {
			src.SetLocation(chatURL(session1))
			src.Append("How do goroutines work?")

			eng.Start(ctx)

			Eventually(func() int {
				sess := load()[session1]
				if sess == nil {
					return 0
				}
				return len(sess.Entries)
			}, time.Second).Should(Equal(1))
		})

		It("coalesces a notification burst into one capture pass", func() {
			src.SetLocation(chatURL(session1))
			eng.Start(ctx)

			// Wait for the initial reconcile to install the watcher.
			Eventually(func() string {
				return eng.Guard().ActiveSession()
			}, time.Second).Should(Equal(session1))
			time.Sleep(50 * time.Millisecond)
			before := len(publisher.all())

			src.Append("How do goroutines work?")
			src.Notify()
			src.Notify()
			src.Notify()

			Eventually(func() int {
				return len(publisher.all())
			}, time.Second).Should(Equal(before + 1))
			Consistently(func() int {
				return len(publisher.all())
			}, 100*time.Millisecond).Should(Equal(before + 1))
		})

		It("ignores locations without a session id", func() {
			src.SetLocation(chatURL(session1))
			eng.Start(ctx)
			Eventually(func() string {
				return eng.Guard().ActiveSession()
			}, time.Second).Should(Equal(session1))

			src.SetLocation("https://claude.ai/settings")
			Consistently(func() string {
				return eng.Guard().ActiveSession()
			}, 100*time.Millisecond).Should(Equal(session1))
		})
	})

	Describe("session switches", func() {
		It("stamps lingering nodes so the next session skips them", func() {
			src.SetLocation(chatURL(session1))
			eng.Start(ctx)

			src.Append("first session question")
			src.Notify()
			Eventually(func() int {
				sess := load()[session1]
				if sess == nil {
					return 0
				}
				return len(sess.Entries)
			}, time.Second).Should(Equal(1))

			// A node mounts during the transition window, before the
			// new session's content replaces the tree.
			src.Append("stale mounted question")
			src.SetLocation(chatURL(session2))

			Eventually(func() string {
				return eng.Guard().ActiveSession()
			}, time.Second).Should(Equal(session2))

			// Give the new session's reconcile and rescans time to run.
			time.Sleep(150 * time.Millisecond)

			snap := load()
			Expect(snap[session2]).To(BeNil())
			Expect(snap[session1].Entries).To(HaveLen(1))
		})

		It("restores persisted tags onto matching nodes by content", func() {
			src.SetLocation(chatURL(session1))
			eng.Start(ctx)

			n := src.Append("How do goroutines work?")
			src.Notify()
			Eventually(func() string {
				return n.Attr(engine.AttrEntryID)
			}, time.Second).ShouldNot(BeEmpty())
			originalID := n.Attr(engine.AttrEntryID)

			// Navigate away and back; the tree re-renders from scratch.
			src.SetLocation(chatURL(session2))
			Eventually(func() string {
				return eng.Guard().ActiveSession()
			}, time.Second).Should(Equal(session2))

			// Simulate the re-render by clearing tags, then navigate back.
			n.ClearAttrs()
			src.SetLocation(chatURL(session1))

			Eventually(func() string {
				return n.Attr(engine.AttrEntryID)
			}, time.Second).Should(Equal(originalID))

			// Still exactly one entry: restoration, not recapture.
			Expect(load()[session1].Entries).To(HaveLen(1))
		})

		It("skips the write when the switch lands during the load", func() {
			gs := &gatedStore{
				inner:       inmemory.New(),
				loadEntered: make(chan struct{}),
				loadRelease: make(chan struct{}),
			}
			held, err := engine.New(&engine.Config{Source: src, Store: gs})
			Expect(err).NotTo(HaveOccurred())
			defer held.Teardown()

			held.Guard().BeginSession(session1)
			src.Append("How do goroutines work?")

			done := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				defer close(done)
				held.CaptureNewEntries(ctx, session1)
			}()

			// The pass has claimed the node and is parked inside the
			// store load when the switch arrives.
			<-gs.loadEntered
			held.Guard().BeginSession(session2)
			close(gs.loadRelease)
			Eventually(done).Should(BeClosed())

			snap, err := gs.inner.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap).To(BeEmpty())
		})

		It("confines a write spanning a switch to the old session's record", func() {
			gs := &gatedStore{
				inner:       inmemory.New(),
				saveEntered: make(chan struct{}),
				saveRelease: make(chan struct{}),
			}
			held, err := engine.New(&engine.Config{Source: src, Store: gs})
			Expect(err).NotTo(HaveOccurred())
			defer held.Teardown()

			held.Guard().BeginSession(session1)
			src.Append("How do goroutines work?")

			done := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				defer close(done)
				held.CaptureNewEntries(ctx, session1)
			}()

			// Past the last staleness check, parked inside the save.
			<-gs.saveEntered
			held.Guard().BeginSession(session2)
			close(gs.saveRelease)
			Eventually(done).Should(BeClosed())

			snap, err := gs.inner.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap).To(HaveKey(session1))
			Expect(snap).NotTo(HaveKey(session2))
			Expect(snap[session1].Entries).To(HaveLen(1))
		})
	})

	Describe("ScrollTo", func() {
		BeforeEach(func() {
			eng.Guard().BeginSession(session1)
		})

		It("highlights a still-tagged node directly", func() {
			n := src.Append("How do goroutines work?")
			eng.CaptureNewEntries(ctx, session1)
			id := n.Attr(engine.AttrEntryID)

			eng.ScrollTo(ctx, id)

			Expect(n.ScrolledIntoView()).To(BeTrue())
			Expect(n.Highlighted()).To(BeTrue())
			Eventually(n.Highlighted, time.Second).Should(BeFalse())
			Expect(src.Scrolls()).To(BeEmpty())
		})

		It("falls back to an exact text match when tags are gone", func() {
			n := src.Append("How do goroutines work?")
			eng.CaptureNewEntries(ctx, session1)
			id := n.Attr(engine.AttrEntryID)

			n.ClearAttrs()
			eng.ScrollTo(ctx, id)

			Expect(n.ScrolledIntoView()).To(BeTrue())
			Expect(src.Scrolls()).To(BeEmpty())
		})

		It("estimates a scroll offset and retries after settling", func() {
			n1 := src.Append("first question")
			n2 := src.Append("second question")
			eng.CaptureNewEntries(ctx, session1)
			id := n2.Attr(engine.AttrEntryID)

			// The node unmounts, as virtualized trees do offscreen.
			src.Detach(n2)
			src.SetScrollHeight(1000)

			done := make(chan struct{})
			go func() {
				defer close(done)
				eng.ScrollTo(ctx, id)
			}()

			// The estimated offset lands mid-tree: index 1 of 2.
			Eventually(src.Scrolls, time.Second).Should(Equal([]int{500}))

			// Scrolling brings the node back before the settle delay
			// elapses; the retry finds it by tag.
			src.SetOrder(n1, n2)
			<-done

			Expect(n2.ScrolledIntoView()).To(BeTrue())
		})

		It("gives up silently on an unknown entry", func() {
			eng.ScrollTo(ctx, "nonexistent")
			Expect(src.Scrolls()).To(BeEmpty())
		})
	})
})
