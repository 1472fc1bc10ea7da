package scanning

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockExtractor struct {
	text        string
	err         error
	closeErr    error
	closed      bool
	contentType string
}

func (m *mockExtractor) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	m.contentType = contentType
	return m.text, m.err
}

func (m *mockExtractor) Close() error {
	m.closed = true
	return m.closeErr
}

var _ = Describe("Reader", func() {
	var (
		extractor *mockExtractor
		reader    *Reader
		data      *ReceiptData
		err       error
	)

	BeforeEach(func() {
		extractor = &mockExtractor{}
		reader = NewReader(extractor)
		reader.now = func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) }
	})

	Describe("ScanReceipt", func() {
		JustBeforeEach(func() {
			data, err = reader.ScanReceipt(context.Background(), []byte("image"), "image/jpeg")
		})

		When("the text is readable", func() {
			BeforeEach(func() {
				extractor.text = "ALFAMART CILANDAK\n10/06/2024 14:02\nSusu UHT 18.500\nTOTAL 18.500"
			})

			It("does not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("passes the content type through", func() {
				Expect(extractor.contentType).To(Equal("image/jpeg"))
			})

			It("keeps the raw text", func() {
				Expect(data.Text).To(Equal(extractor.text))
			})

			It("extracts the total", func() {
				Expect(data.Amount.String()).To(Equal("18500"))
			})

			It("extracts the description", func() {
				Expect(data.Description).To(Equal("ALFAMART CILANDAK"))
			})

			It("extracts the date", func() {
				Expect(data.Date).To(Equal("2024-06-10"))
			})
		})

		When("no amount can be found", func() {
			BeforeEach(func() {
				extractor.text = "Terima kasih"
			})

			It("returns a zero amount", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(data.Amount.IsZero()).To(BeTrue())
			})

			It("defaults the date to today", func() {
				Expect(data.Date).To(Equal("2024-06-15"))
			})
		})

		When("the extractor fails", func() {
			BeforeEach(func() {
				extractor.err = errors.New("ocr failed")
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ContainSubstring("ocr failed")))
				Expect(data).To(BeNil())
			})
		})
	})

	Describe("Close", func() {
		It("closes the extractor", func() {
			Expect(reader.Close()).To(Succeed())
			Expect(extractor.closed).To(BeTrue())
		})

		It("returns the extractor's error", func() {
			extractor.closeErr = errors.New("boom")
			Expect(reader.Close()).To(MatchError("boom"))
		})
	})
})
