package export_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/catalog/pkg/catalog"
	"github.com/papercomputeco/catalog/pkg/export"
)

const sessID = "0c7f94f2-58a1-4cbe-90d5-1f2ce1f0aa11"

func testSession() *catalog.Session {
	return &catalog.Session{
		Title:     "How do goroutines work?",
		CreatedAt: 1700000000000,
		UpdatedAt: 1700000300000,
		Entries: []catalog.Entry{
			{ID: "e1", Text: "How do goroutines work?", Timestamp: 1700000000000},
			{ID: "e2", Text: "What about channels?", Timestamp: 1700000100000},
			{ID: "e3", Text: "Show me an example", Timestamp: 1700000300000},
		},
	}
}

var _ = Describe("ParseFormat", func() {
	It("accepts canonical names and aliases", func() {
		for in, want := range map[string]export.Format{
			"json":     export.FormatJSON,
			"markdown": export.FormatMarkdown,
			"md":       export.FormatMarkdown,
			"text":     export.FormatText,
			"txt":      export.FormatText,
			" JSON ":   export.FormatJSON,
		} {
			got, err := export.ParseFormat(in)
			Expect(err).NotTo(HaveOccurred(), in)
			Expect(got).To(Equal(want), in)
		}
	})

	It("rejects unknown names", func() {
		_, err := export.ParseFormat("yaml")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Render", func() {
	It("rejects a nil session", func() {
		_, err := export.Render(sessID, nil, nil, export.FormatJSON)
		Expect(err).To(HaveOccurred())
	})

	It("renders JSON with all entries by default", func() {
		out, err := export.Render(sessID, testSession(), nil, export.FormatJSON)
		Expect(err).NotTo(HaveOccurred())

		var doc struct {
			SessionID string          `json:"session_id"`
			Title     string          `json:"title"`
			Entries   []catalog.Entry `json:"entries"`
		}
		Expect(json.Unmarshal([]byte(out), &doc)).To(Succeed())
		Expect(doc.SessionID).To(Equal(sessID))
		Expect(doc.Title).To(Equal("How do goroutines work?"))
		Expect(doc.Entries).To(HaveLen(3))
	})

	It("filters by selected ids in stored order", func() {
		out, err := export.Render(sessID, testSession(), []string{"e3", "e1"}, export.FormatText)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("How do goroutines work?"))
		Expect(out).To(ContainSubstring("Show me an example"))
		Expect(out).NotTo(ContainSubstring("What about channels?"))

		// Stored order wins over selection order.
		Expect(out).To(MatchRegexp(`(?s)goroutines.*example`))
	})

	It("renders a markdown numbered list under the title", func() {
		out, err := export.Render(sessID, testSession(), nil, export.FormatMarkdown)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("# How do goroutines work?\n"))
		Expect(out).To(ContainSubstring("1. How do goroutines work?"))
		Expect(out).To(ContainSubstring("3. Show me an example"))
	})
})

var _ = Describe("RenderSnapshot", func() {
	It("orders sessions by most recent activity", func() {
		snap := catalog.Snapshot{
			"aaa": &catalog.Session{Title: "older", UpdatedAt: 100},
			"bbb": &catalog.Session{Title: "newer", UpdatedAt: 200},
		}

		out, err := export.RenderSnapshot(snap)
		Expect(err).NotTo(HaveOccurred())

		var docs []struct {
			Title string `json:"title"`
		}
		Expect(json.Unmarshal([]byte(out), &docs)).To(Succeed())
		Expect(docs).To(HaveLen(2))
		Expect(docs[0].Title).To(Equal("newer"))
		Expect(docs[1].Title).To(Equal("older"))
	})

	It("renders an empty snapshot as an empty array", func() {
		out, err := export.RenderSnapshot(catalog.Snapshot{})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("[]"))
	})
})

var _ = Describe("FileName", func() {
	It("uses the UTC date", func() {
		t := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)
		Expect(export.FileName(t)).To(Equal("catalog_2026-08-30.json"))
	})
})
