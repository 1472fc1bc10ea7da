package scanning

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	return img
}

func testPNG() []byte {
	var buf bytes.Buffer
	Expect(png.Encode(&buf, testImage())).To(Succeed())
	return buf.Bytes()
}

func testJPEG() []byte {
	var buf bytes.Buffer
	Expect(jpeg.Encode(&buf, testImage(), nil)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("PrepareImage", func() {
	var (
		input       []byte
		contentType string
		output      []byte
		mimeType    string
		converted   bool
		err         error
	)

	JustBeforeEach(func() {
		output, mimeType, converted, err = PrepareImage(input, contentType)
	})

	When("the upload is already a PNG", func() {
		BeforeEach(func() {
			input = testPNG()
			contentType = "image/png; charset=binary"
		})

		It("passes it through", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(converted).To(BeFalse())
			Expect(output).To(Equal(input))
			Expect(mimeType).To(Equal("image/png"))
		})
	})

	When("the upload is a JPEG", func() {
		BeforeEach(func() {
			input = testJPEG()
			contentType = "IMAGE/JPEG"
		})

		It("converts it to PNG", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(converted).To(BeTrue())
			Expect(mimeType).To(Equal("image/png"))

			_, format, decodeErr := image.Decode(bytes.NewReader(output))
			Expect(decodeErr).NotTo(HaveOccurred())
			Expect(format).To(Equal("png"))
		})
	})

	When("the content type is missing", func() {
		BeforeEach(func() {
			input = testJPEG()
			contentType = ""
		})

		It("treats the upload as a JPEG", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(converted).To(BeTrue())
		})
	})

	When("the upload is not an image", func() {
		BeforeEach(func() {
			input = []byte("definitely not an image")
			contentType = "image/jpeg"
		})

		It("returns an unsupported format error", func() {
			Expect(err).To(MatchError(ContainSubstring("unsupported image format")))
		})
	})
})

var _ = Describe("isHEICFormat", func() {
	It("recognizes a HEIC ftyp box", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
		Expect(isHEICFormat(data)).To(BeTrue())
	})

	It("rejects other formats", func() {
		Expect(isHEICFormat(testPNG())).To(BeFalse())
		Expect(isHEICFormat([]byte("short"))).To(BeFalse())
	})
})
