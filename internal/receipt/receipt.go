package receipt

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Category assigned to expenses recorded from a receipt
const Category = "Lainnya"

var (
	// ErrMissingFields is returned when a receipt is saved without an amount or description
	ErrMissingFields = errors.New("amount and description are required")
	// ErrNoReceipt is returned when a transaction has no stored receipt
	ErrNoReceipt = errors.New("transaction has no receipt")
	// ErrInvalidName is returned for file names that would escape the storage directory
	ErrInvalidName = errors.New("invalid file name")
	// ErrUnknownFile is returned when a draft names a file that was not
	// uploaded by the user or already belongs to another transaction
	ErrUnknownFile = errors.New("unknown receipt file")
)

// Draft is the result of scanning a receipt, shown to the user for review
// before it becomes an expense.
type Draft struct {
	ID             string          `json:"id"`
	Text           string          `json:"text"`
	Amount         decimal.Decimal `json:"amount"`
	AmountDetected bool            `json:"amount_detected"`
	Description    string          `json:"description"`
	Date           string          `json:"date"`
	Filename       string          `json:"filename"`
	ContentType    string          `json:"content_type"`
	Message        string          `json:"message"`
}

// SaveRequest holds the reviewed draft fields
type SaveRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Filename    string          `json:"filename"`
}
