package storepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"
)

var _ = Describe("Resolve", func() {
	var v *viper.Viper
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "storepath-test-*")
		Expect(err).NotTo(HaveOccurred())
		v = viper.New()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("passes an explicit path through untouched", func() {
		v.Set("storage.provider", "sqlite")
		v.Set("storage.path", "/tmp/some.db")

		provider, path, err := Resolve(v, tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(provider).To(Equal("sqlite"))
		Expect(path).To(Equal("/tmp/some.db"))
	})

	It("does not require a path for the memory provider", func() {
		v.Set("storage.provider", "memory")

		provider, path, err := Resolve(v, tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(provider).To(Equal("memory"))
		Expect(path).To(BeEmpty())
	})

	It("defaults sqlite to catalog.db in the config dir", func() {
		v.Set("storage.provider", "sqlite")

		_, path, err := Resolve(v, tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(tmpDir, "catalog.db")))
	})

	It("defaults badger to a badger dir in the config dir", func() {
		v.Set("storage.provider", "badger")

		_, path, err := Resolve(v, tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(tmpDir, "badger")))
	})

	It("prefers the CATALOG_DB environment variable over defaults", func() {
		os.Setenv("CATALOG_DB", "/srv/data/catalog.db")
		DeferCleanup(func() { os.Unsetenv("CATALOG_DB") })

		v.Set("storage.provider", "sqlite")
		_, path, err := Resolve(v, tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/srv/data/catalog.db"))
	})

	It("defaults an empty provider to sqlite", func() {
		provider, _, err := Resolve(v, tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(provider).To(Equal("sqlite"))
	})
})
