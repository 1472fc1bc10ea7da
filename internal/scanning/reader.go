package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Reader implements Scanner by running OCR and then the receipt heuristics
// over the recognized text.
type Reader struct {
	extractor Extractor
	now       func() time.Time
}

// NewReader creates a Reader on top of an OCR extractor
func NewReader(extractor Extractor) *Reader {
	return &Reader{extractor: extractor, now: time.Now}
}

// ScanReceipt reads a receipt and extracts its total, description and date
func (r *Reader) ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*ReceiptData, error) {
	text, err := r.extractor.ExtractText(ctx, imageData, contentType)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}

	amount, source := detectAmount(text)
	if source == "" {
		slog.Debug("No amount detected", "text_length", len(text))
	} else {
		slog.Debug("Detected amount", "source", source, "amount", amount.String())
	}

	return &ReceiptData{
		Text:        text,
		Amount:      amount,
		Description: ExtractDescription(text),
		Date:        ExtractDate(text, r.now()),
	}, nil
}

// Close closes the underlying extractor
func (r *Reader) Close() error {
	return r.extractor.Close()
}
