package content_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adiwijaya/course-management/internal/content"
)

var _ = Describe("FileType", func() {
	DescribeTable("classifying extensions",
		func(path, expected string) {
			Expect(content.FileType(path)).To(Equal(expected))
		},
		Entry("pdf", "course-content/x/a.pdf", "pdf"),
		Entry("doc", "a.doc", "document"),
		Entry("docx", "a.docx", "document"),
		Entry("ppt", "a.ppt", "presentation"),
		Entry("pptx", "a.pptx", "presentation"),
		Entry("mp4", "a.mp4", "video"),
		Entry("mp3", "a.mp3", "audio"),
		Entry("txt", "a.txt", "text"),
		Entry("unknown extension", "a.xyz", "file"),
		Entry("no extension", "Makefile", "file"),
		Entry("uppercase extension", "a.PDF", "pdf"),
	)

	It("should return empty for an empty path", func() {
		Expect(content.FileType("")).To(BeEmpty())
	})
})

var _ = Describe("ContentURL", func() {
	It("should join base and path with exactly one slash", func() {
		Expect(content.ContentURL("http://host/storage/", "/course-content/x/a.pdf")).
			To(Equal("http://host/storage/course-content/x/a.pdf"))
		Expect(content.ContentURL("http://host/storage", "course-content/x/a.pdf")).
			To(Equal("http://host/storage/course-content/x/a.pdf"))
	})

	It("should return empty for an empty path", func() {
		Expect(content.ContentURL("http://host", "")).To(BeEmpty())
	})
})

var _ = Describe("Module.Decorate", func() {
	It("should fill the derived attributes", func() {
		m := content.Module{ContentPath: "course-content/c1/a.mp4"}
		m.Decorate("http://host/storage")
		Expect(m.ContentURL).To(Equal("http://host/storage/course-content/c1/a.mp4"))
		Expect(m.FileType).To(Equal("video"))
	})
})

var _ = Describe("DiskStore", func() {
	var (
		root  string
		store *content.DiskStore
	)

	BeforeEach(func() {
		var err error
		root, err = os.MkdirTemp("", "content-store")
		Expect(err).ToNot(HaveOccurred())
		store = content.NewDiskStore(root)
	})

	AfterEach(func() {
		os.RemoveAll(root)
	})

	It("should write the file under the course directory and keep the extension", func() {
		rel, err := store.Save("course-1", "Slides.PDF", strings.NewReader("pdf-bytes"))
		Expect(err).ToNot(HaveOccurred())
		Expect(rel).To(HavePrefix("course-content/course-1/"))
		Expect(rel).To(HaveSuffix(".pdf"))

		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal("pdf-bytes"))
	})

	It("should generate distinct paths for identical filenames", func() {
		first, err := store.Save("course-1", "a.pdf", strings.NewReader("one"))
		Expect(err).ToNot(HaveOccurred())
		second, err := store.Save("course-1", "a.pdf", strings.NewReader("two"))
		Expect(err).ToNot(HaveOccurred())
		Expect(first).ToNot(Equal(second))
	})
})
