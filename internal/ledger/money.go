package ledger

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatIDR renders an amount as rupiah without fraction digits, e.g. "Rp 50.000"
func FormatIDR(amount decimal.Decimal) string {
	p := message.NewPrinter(language.Indonesian)
	rounded := amount.Round(0)
	if rounded.IsNegative() {
		return "-" + p.Sprintf("Rp %d", rounded.Abs().IntPart())
	}
	return p.Sprintf("Rp %d", rounded.IntPart())
}
