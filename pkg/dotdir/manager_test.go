package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/catalog/pkg/dotdir"
)

var _ = Describe("dotdir", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Target", func() {
		It("creates the directory if it doesn't exist", func() {
			dir := filepath.Join(tmpDir, "newdir")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("returns existing directory without error", func() {
			result, err := m.Target(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(tmpDir))
		})

		It("returns the override dir even when a local .catalog dir exists", func() {
			local := filepath.Join(tmpDir, ".catalog")
			Expect(os.Mkdir(local, 0o755)).To(Succeed())

			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			overrideDir := filepath.Join(tmpDir, "override")
			result, err := m.Target(overrideDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(overrideDir))
		})

		It("returns the local .catalog dir when it exists and no override is provided", func() {
			local := filepath.Join(tmpDir, ".catalog")
			Expect(os.Mkdir(local, 0o755)).To(Succeed())

			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(local))
		})
	})

	Describe("WatchState", func() {
		It("returns nil when no state exists", func() {
			state, err := m.LoadWatchState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("round-trips saved state", func() {
			in := &dotdir.WatchState{
				SnapshotPath:  "/tmp/conversation.html",
				LastSessionID: "0c7f94f2-58a1-4cbe-90d5-1f2ce1f0aa11",
			}
			Expect(m.SaveWatchState(in, tmpDir)).To(Succeed())

			out, err := m.LoadWatchState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(in))
		})

		It("rejects nil state", func() {
			Expect(m.SaveWatchState(nil, tmpDir)).NotTo(Succeed())
		})

		It("clears state idempotently", func() {
			in := &dotdir.WatchState{SnapshotPath: "x.html"}
			Expect(m.SaveWatchState(in, tmpDir)).To(Succeed())
			Expect(m.ClearWatchState(tmpDir)).To(Succeed())
			Expect(m.ClearWatchState(tmpDir)).To(Succeed())

			state, err := m.LoadWatchState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})
	})
})
