package engine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/catalog/pkg/livetree/memtree"
	"github.com/papercomputeco/catalog/pkg/store/inmemory"
)

var _ = Describe("startWatcher", func() {
	const (
		sessA = "3f1b2c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
		sessB = "4a2c3d5e-6f70-4b8c-9d0e-1f2a3b4c5d6e"
	)

	var (
		src *memtree.Source
		eng *Engine
	)

	currentWatcher := func() *watcher {
		eng.watchMu.Lock()
		defer eng.watchMu.Unlock()
		return eng.watcher
	}

	BeforeEach(func() {
		src = memtree.New()
		var err error
		eng, err = New(&Config{Source: src, Store: inmemory.New()})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		eng.Teardown()
		src.Close()
	})

	It("installs a watcher for the active session", func() {
		epoch := eng.guard.BeginSession(sessA)
		eng.startWatcher(sessA, epoch)
		Expect(currentWatcher()).NotTo(BeNil())
	})

	It("refuses to replace a fresher session's watcher", func() {
		// A reconcile for sessA passed its last staleness check, then a
		// switch to sessB completed and installed sessB's watcher before
		// sessA's goroutine reached the install.
		epochA := eng.guard.BeginSession(sessA)
		epochB := eng.guard.BeginSession(sessB)

		eng.startWatcher(sessB, epochB)
		active := currentWatcher()
		Expect(active).NotTo(BeNil())

		eng.startWatcher(sessA, epochA)
		Expect(currentWatcher()).To(BeIdenticalTo(active))
	})

	It("does not install for a superseded epoch of the same session", func() {
		epoch := eng.guard.BeginSession(sessA)
		eng.guard.BeginSession(sessB)

		eng.startWatcher(sessA, epoch)
		Expect(currentWatcher()).To(BeNil())
	})
})
