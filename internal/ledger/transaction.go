// Package ledger records a user's income, expense and transfer entries and
// derives the statistics shown on the dashboard.
package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for transaction dates
const DateLayout = "2006-01-02"

var (
	// ErrNotFound is returned when a transaction does not exist for the user
	ErrNotFound = errors.New("transaction not found")
	// ErrInvalidTransaction is returned when a new transaction fails validation
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// Type is the kind of money movement
type Type string

const (
	Income   Type = "income"
	Expense  Type = "expense"
	Transfer Type = "transfer"
)

// Types lists every transaction type in display order
var Types = []Type{Income, Expense, Transfer}

// Valid reports whether t is a known type
func (t Type) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// Label returns the Indonesian label used in exports
func (t Type) Label() string {
	switch t {
	case Income:
		return "Pemasukan"
	case Expense:
		return "Pengeluaran"
	case Transfer:
		return "Transfer"
	default:
		return string(t)
	}
}

// Transaction is a single ledger entry
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        Type            `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"` // YYYY-MM-DD
	ReceiptFile string          `json:"receipt_file,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewTransaction holds the caller-supplied fields of a transaction
type NewTransaction struct {
	Type        Type            `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	ReceiptFile string          `json:"-"`
}

// Filter narrows a listing. Empty fields or "all" match everything.
type Filter struct {
	Type     Type
	Category string
}

func (f Filter) matches(t *Transaction) bool {
	if f.Type != "" && f.Type != "all" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && f.Category != "all" && t.Category != f.Category {
		return false
	}
	return true
}

// Summary holds the dashboard totals
type Summary struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
}

// CategoryTotal is one slice of the expense chart
type CategoryTotal struct {
	Name    string          `json:"name"`
	Value   decimal.Decimal `json:"value"`
	Percent int64           `json:"percent"`
}

// Counts holds per-type transaction counts
type Counts struct {
	Total    int `json:"total"`
	Income   int `json:"income"`
	Expense  int `json:"expense"`
	Transfer int `json:"transfer"`
}
