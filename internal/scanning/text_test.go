package scanning

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractDescription", func() {
	It("returns the first meaningful line", func() {
		Expect(ExtractDescription("TOKO MAJU JAYA\nJl. Merdeka 1\nTOTAL 80.000")).To(Equal("TOKO MAJU JAYA"))
	})

	It("skips short, numeric and total lines", func() {
		text := "ABC\n   \n12345678\nTotal belanja\n  Warung Makan Sederhana  "
		Expect(ExtractDescription(text)).To(Equal("Warung Makan Sederhana"))
	})

	It("truncates long lines to 50 characters", func() {
		line := strings.Repeat("ABCDEFGHIJ", 6)
		Expect(ExtractDescription(line)).To(Equal(line[:50]))
	})

	It("returns an empty string when nothing qualifies", func() {
		Expect(ExtractDescription("abc\n123\n")).To(BeEmpty())
	})
})

var _ = Describe("ExtractDate", func() {
	var now time.Time

	BeforeEach(func() {
		now = time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC)
	})

	DescribeTable("reading printed dates",
		func(text string, expected string) {
			Expect(ExtractDate(text, now)).To(Equal(expected))
		},
		Entry("day-first with slashes", "Tanggal: 12/03/2024 10:22", "2024-03-12"),
		Entry("ISO date", "2024-05-01 10:22", "2024-05-01"),
		Entry("two-digit year with dots", "05.06.24", "2024-06-05"),
		Entry("today itself", "15-06-2024", "2024-06-15"),
	)

	It("skips impossible dates", func() {
		Expect(ExtractDate("31/02/2024\n01/02/2024", now)).To(Equal("2024-02-01"))
	})

	It("skips dates in the future", func() {
		Expect(ExtractDate("20/12/2024", now)).To(Equal("2024-06-15"))
	})

	It("falls back to today", func() {
		Expect(ExtractDate("no date here", now)).To(Equal("2024-06-15"))
	})
})
