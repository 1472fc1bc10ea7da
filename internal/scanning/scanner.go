package scanning

import (
	"context"

	"github.com/shopspring/decimal"
)

// ReceiptData contains what could be read from a receipt photo
type ReceiptData struct {
	Text        string          `json:"text"`
	Amount      decimal.Decimal `json:"amount"` // zero when no total was found
	Description string          `json:"description"`
	Date        string          `json:"date"` // YYYY-MM-DD
}

// Extractor turns a receipt image into raw text
type Extractor interface {
	// ExtractText runs OCR over an image or PDF
	ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Close releases the extractor's resources
	Close() error
}

// Scanner defines the interface for receipt scanning operations
type Scanner interface {
	// ScanReceipt reads a receipt image/PDF and extracts its total, description and date
	ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*ReceiptData, error)
	// Close closes the scanner and releases resources
	Close() error
}
