package livetree_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/catalog/pkg/livetree"
	"github.com/papercomputeco/catalog/pkg/livetree/memtree"
)

var _ = Describe("Discover", func() {
	var src *memtree.Source

	BeforeEach(func() {
		src = memtree.New()
	})

	AfterEach(func() {
		src.Close()
	})

	It("returns nodes matching the primary selector", func() {
		src.Append("first question")
		src.Append("second question")

		nodes := livetree.Discover(src, nil)
		Expect(nodes).To(HaveLen(2))
		Expect(nodes[0].Text()).To(Equal("first question"))
	})

	It("falls back to later selectors only when earlier ones are empty", func() {
		src.Append("legacy markup", livetree.DefaultSelectors[2])

		nodes := livetree.Discover(src, nil)
		Expect(nodes).To(HaveLen(1))
		Expect(nodes[0].Text()).To(Equal("legacy markup"))
	})

	It("stops at the first selector with matches", func() {
		src.Append("primary", livetree.DefaultSelectors[0])
		src.Append("legacy", livetree.DefaultSelectors[2])

		nodes := livetree.Discover(src, nil)
		Expect(nodes).To(HaveLen(1))
		Expect(nodes[0].Text()).To(Equal("primary"))
	})

	It("returns nil when no selector matches", func() {
		Expect(livetree.Discover(src, nil)).To(BeNil())
	})

	It("honors an explicit selector list", func() {
		src.Append("custom", `[data-role="turn"]`)

		Expect(livetree.Discover(src, nil)).To(BeNil())
		Expect(livetree.Discover(src, []string{`[data-role="turn"]`})).To(HaveLen(1))
	})
})
