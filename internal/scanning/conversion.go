package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// pdfToImage renders the first page of a PDF as PNG
func pdfToImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	// receipts are single page
	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// imageToPNG re-encodes a JPEG, GIF or HEIC photo as PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if isUnsupportedFormat(err) {
				return nil, fmt.Errorf("unsupported image format (use JPEG, PNG, GIF, HEIC or PDF): %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func isUnsupportedFormat(err error) bool {
	return errors.Is(err, image.ErrFormat) || strings.Contains(err.Error(), "unsupported")
}

// isHEICFormat sniffs the ISO BMFF ftyp box for a HEIC/HEIF brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// convertToPNG converts PDFs and non-PNG images to PNG and reports whether
// a conversion happened.
func convertToPNG(imageData []byte, mimeType string) ([]byte, bool, error) {
	if mimeType == "application/pdf" {
		pngData, err := pdfToImage(imageData)
		if err != nil {
			return nil, false, fmt.Errorf("converting PDF to image: %w", err)
		}
		return pngData, true, nil
	}
	if mimeType != "image/png" || isHEICFormat(imageData) {
		pngData, err := imageToPNG(imageData, mimeType)
		if err != nil {
			return nil, false, fmt.Errorf("converting image to PNG: %w", err)
		}
		return pngData, true, nil
	}
	return imageData, false, nil
}

// PrepareImage normalizes the MIME type and converts the upload to PNG.
// It returns the PNG bytes, "image/png", and whether a conversion occurred.
func PrepareImage(imageData []byte, contentType string) ([]byte, string, bool, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	finalImageData, converted, err := convertToPNG(imageData, mimeType)
	if err != nil {
		return nil, "", false, err
	}
	return finalImageData, "image/png", converted, nil
}
