package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("cleanTranscript", func() {
	It("removes code fences with a language tag", func() {
		Expect(cleanTranscript("```text\nLINE 1  \nLINE 2\n```")).To(Equal("LINE 1\nLINE 2"))
	})

	It("removes bare code fences", func() {
		Expect(cleanTranscript("```\nTOTAL 10.000\n```")).To(Equal("TOTAL 10.000"))
	})

	It("trims trailing whitespace from every line", func() {
		Expect(cleanTranscript("  TOKO \r\n TOTAL 5.000\t\n\n")).To(Equal("TOKO\n TOTAL 5.000"))
	})

	It("leaves plain text alone", func() {
		Expect(cleanTranscript("TOKO\nTOTAL 5.000")).To(Equal("TOKO\nTOTAL 5.000"))
	})
})
