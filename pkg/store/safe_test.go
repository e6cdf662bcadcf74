package store_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/catalog/pkg/catalog"
	"github.com/papercomputeco/catalog/pkg/store"
	"github.com/papercomputeco/catalog/pkg/store/inmemory"
)

// flakyStore fails on demand.
type flakyStore struct {
	inner   store.Store
	failing bool
}

func (f *flakyStore) Load(ctx context.Context) (catalog.Snapshot, error) {
	if f.failing {
		return nil, errors.New("host gone")
	}
	return f.inner.Load(ctx)
}

func (f *flakyStore) Save(ctx context.Context, snap catalog.Snapshot) error {
	if f.failing {
		return errors.New("host gone")
	}
	return f.inner.Save(ctx, snap)
}

func (f *flakyStore) Clear(ctx context.Context) error { return f.inner.Clear(ctx) }
func (f *flakyStore) Close() error                    { return nil }

var _ = Describe("Safe", func() {
	var (
		flaky *flakyStore
		safe  *store.Safe
		ctx   context.Context
	)

	BeforeEach(func() {
		flaky = &flakyStore{inner: inmemory.New()}
		safe = store.NewSafe(flaky, nil)
		ctx = context.Background()
	})

	It("is available until proven otherwise", func() {
		Expect(safe.Available()).To(BeTrue())
	})

	It("returns an empty snapshot when the load fails", func() {
		flaky.failing = true
		snap := safe.Load(ctx)
		Expect(snap).NotTo(BeNil())
		Expect(snap).To(BeEmpty())
		Expect(safe.Available()).To(BeFalse())
	})

	It("drops the write when the save fails", func() {
		flaky.failing = true
		safe.Save(ctx, catalog.Snapshot{"s1": catalog.NewSession(catalog.Entry{Text: "hi", Timestamp: 1})})
		Expect(safe.Available()).To(BeFalse())

		flaky.failing = false
		Expect(safe.Load(ctx)).To(BeEmpty())
	})

	It("recovers when the backing store returns", func() {
		flaky.failing = true
		safe.Load(ctx)
		Expect(safe.Available()).To(BeFalse())

		flaky.failing = false
		snap := catalog.Snapshot{"s1": catalog.NewSession(catalog.Entry{Text: "hi", Timestamp: 1})}
		safe.Save(ctx, snap)
		Expect(safe.Available()).To(BeTrue())
		Expect(safe.Load(ctx)).To(HaveKey("s1"))
	})

	It("normalizes a nil snapshot to empty", func() {
		snap := safe.Load(ctx)
		Expect(snap).NotTo(BeNil())
	})
})

var _ = Describe("Open", func() {
	It("opens the memory provider without a path", func() {
		s, err := store.Open("memory", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Close()).To(Succeed())
	})

	It("requires a path for sqlite", func() {
		_, err := store.Open("sqlite", "")
		Expect(err).To(HaveOccurred())
	})

	It("requires a path for badger", func() {
		_, err := store.Open("badger", "")
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown providers", func() {
		_, err := store.Open("etcd", "x")
		Expect(err).To(HaveOccurred())
	})
})
