// Package tesseract reads receipts with a local Tesseract engine through
// cgo. Building it needs the tesseract and leptonica headers.
package tesseract

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/zombor/balance-siaga/internal/scanning"
)

var _ scanning.Extractor = (*Tesseract)(nil)

// DefaultLanguage is Indonesian, matching the receipts the keyword list targets
const DefaultLanguage = "ind"

// Tesseract implements scanning.Extractor with a local Tesseract engine
type Tesseract struct {
	mu     sync.Mutex // gosseract clients are not safe for concurrent use
	client *gosseract.Client
}

// New creates a Tesseract extractor for the given language(s), e.g. "ind" or "ind+eng"
func New(languages ...string) (*Tesseract, error) {
	if len(languages) == 0 {
		languages = []string{DefaultLanguage}
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting tesseract language: %w", err)
	}

	return &Tesseract{client: client}, nil
}

// ExtractText runs Tesseract OCR over the receipt
func (t *Tesseract) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	finalImageData, _, _, err := scanning.PrepareImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := t.client.SetImageFromBytes(finalImageData); err != nil {
		return "", fmt.Errorf("loading image into tesseract: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return text, nil
}

// Close releases the Tesseract engine
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
