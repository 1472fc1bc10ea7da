package receipt

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		var (
			name string
			err  error
		)

		BeforeEach(func() {
			name = "abc_receipt.jpg"
		})

		JustBeforeEach(func() {
			err = storage.Save("user-1", name, []byte("test file content"))
		})

		When("saving succeeds", func() {
			It("does not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("writes the file into the user's directory", func() {
				Expect(filepath.Join(tmpDir, "user-1", name)).To(BeAnExistingFile())
			})
		})

		When("the name tries to leave the directory", func() {
			BeforeEach(func() {
				name = "../other-user/receipt.jpg"
			})

			It("returns ErrInvalidName", func() {
				Expect(err).To(MatchError(ErrInvalidName))
			})
		})
	})

	Describe("Get", func() {
		var (
			name string
			data []byte
			err  error
		)

		BeforeEach(func() {
			Expect(storage.Save("user-1", "abc_receipt.jpg", []byte("test file content"))).To(Succeed())
		})

		JustBeforeEach(func() {
			data, err = storage.Get("user-1", name)
		})

		When("file exists", func() {
			BeforeEach(func() {
				name = "abc_receipt.jpg"
			})

			It("returns the file data", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("test file content"))
			})

			It("does not share files between users", func() {
				_, otherErr := storage.Get("user-2", name)
				Expect(otherErr).To(MatchError(ContainSubstring("reading file")))
			})
		})

		When("file does not exist", func() {
			BeforeEach(func() {
				name = "nonexistent.jpg"
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ContainSubstring("reading file")))
			})
		})

		When("the name is empty", func() {
			BeforeEach(func() {
				name = ""
			})

			It("returns ErrInvalidName", func() {
				Expect(err).To(MatchError(ErrInvalidName))
			})
		})
	})

	Describe("Delete", func() {
		var (
			name string
			err  error
		)

		BeforeEach(func() {
			Expect(storage.Save("user-1", "abc_receipt.jpg", []byte("test content"))).To(Succeed())
		})

		JustBeforeEach(func() {
			err = storage.Delete("user-1", name)
		})

		When("file exists", func() {
			BeforeEach(func() {
				name = "abc_receipt.jpg"
			})

			It("removes the file from disk", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(filepath.Join(tmpDir, "user-1", name)).NotTo(BeAnExistingFile())
			})
		})

		When("file does not exist", func() {
			BeforeEach(func() {
				name = "nonexistent.jpg"
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ContainSubstring("deleting file")))
			})
		})
	})

	Describe("NewLocalStorage", func() {
		When("directory does not exist", func() {
			It("creates the directory", func() {
				storagePath := filepath.Join(GinkgoT().TempDir(), "receipts")
				_, err := NewLocalStorage(storagePath)
				Expect(err).NotTo(HaveOccurred())
				Expect(storagePath).To(BeADirectory())
			})
		})
	})
})
