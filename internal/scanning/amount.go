package scanning

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// totalKeywords are searched in priority order. The first keyword line (or
// the line right after it) holding a plausible number wins.
var totalKeywords = []string{
	"grand total",
	"total bayar",
	"total pembayaran",
	"total belanja",
	"jumlah bayar",
	"total",
	"subtotal",
	"sub total",
	"amount",
	"total amount",
	"total price",
	"harga total",
}

var (
	// optional Rp prefix, then either a separator-grouped number (50.000, 1,234.56)
	// or a plain digit run with an optional two-digit fraction (50000, 12,50)
	keywordNumberPattern  = regexp.MustCompile(`(?i)(?:rp\.?\s*)?(\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{2})?|\d+(?:[.,]\d{2})?)`)
	fallbackNumberPattern = regexp.MustCompile(`\d+[.,]?\d*`)

	minKeywordAmount  = decimal.NewFromInt(500)
	maxPlainDigits    = 9
	minFallbackAmount = decimal.NewFromInt(1000)
	maxFallbackAmount = decimal.NewFromInt(100000000)
)

// ExtractAmount finds the most plausible receipt total in OCR text. It
// returns zero when nothing plausible is found.
func ExtractAmount(text string) decimal.Decimal {
	amount, _ := detectAmount(text)
	return amount
}

// detectAmount returns the total and the keyword that produced it
// ("fallback" for the keyword-less path, "" when nothing was found).
func detectAmount(text string) (decimal.Decimal, string) {
	lines := strings.Split(text, "\n")

	for _, keyword := range totalKeywords {
		for i, line := range lines {
			if !strings.Contains(strings.ToLower(line), keyword) {
				continue
			}

			// the label and the figure are often printed on separate lines
			candidates := []string{line}
			if i+1 < len(lines) {
				candidates = append(candidates, lines[i+1])
			}
			for _, candidate := range candidates {
				if amount, ok := largestAmount(candidate); ok {
					return amount, keyword
				}
			}
		}
	}

	best, found := decimal.Zero, false
	for _, token := range fallbackNumberPattern.FindAllString(text, -1) {
		digits := strings.NewReplacer(".", "", ",", "").Replace(token)
		amount, err := decimal.NewFromString(digits)
		if err != nil {
			continue
		}
		if amount.GreaterThan(minFallbackAmount) && amount.LessThan(maxFallbackAmount) {
			if !found || amount.GreaterThan(best) {
				best, found = amount, true
			}
		}
	}
	if found {
		return best, "fallback"
	}

	return decimal.Zero, ""
}

// largestAmount returns the largest number above the noise floor on a line.
// Date and time parts, reference numbers and other digit runs that cannot be
// a price are skipped.
func largestAmount(line string) (decimal.Decimal, bool) {
	best, found := decimal.Zero, false
	for _, loc := range keywordNumberPattern.FindAllStringSubmatchIndex(line, -1) {
		start, end := loc[2], loc[3]
		if touchesDateOrTime(line, start, end) || !plausiblePlainRun(line[start:end]) {
			continue
		}
		amount, ok := normalizeNumber(line[start:end])
		if !ok || !amount.GreaterThan(minKeywordAmount) {
			continue
		}
		if !found || amount.GreaterThan(best) {
			best, found = amount, true
		}
	}
	return best, found
}

func touchesDateOrTime(line string, start, end int) bool {
	const separators = "/-:"
	if start > 0 && strings.IndexByte(separators, line[start-1]) >= 0 {
		return true
	}
	return end < len(line) && strings.IndexByte(separators, line[end]) >= 0
}

// plausiblePlainRun rejects ungrouped digit runs that look like IDs: a
// leading zero or more digits than any receipt total carries.
func plausiblePlainRun(token string) bool {
	integer := token
	if i := strings.IndexAny(token, ".,"); i >= 0 {
		if len(token)-i-1 == 3 {
			// thousands grouped
			return true
		}
		integer = token[:i]
	}
	if len(integer) > maxPlainDigits {
		return false
	}
	return len(integer) == 1 || integer[0] != '0'
}

// normalizeNumber resolves thousands and decimal separators. With both "."
// and "," present the last one is the decimal separator. With only one kind,
// it is a thousands separator when it repeats or is followed by exactly three
// digits, otherwise a decimal separator.
func normalizeNumber(s string) (decimal.Decimal, bool) {
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasDot && hasComma:
		decimalSep, groupSep := ",", "."
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			decimalSep, groupSep = ".", ","
		}
		s = strings.ReplaceAll(s, groupSep, "")
		s = strings.Replace(s, decimalSep, ".", 1)
	case hasDot:
		s = normalizeSeparator(s, ".")
	case hasComma:
		s = normalizeSeparator(s, ",")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

func normalizeSeparator(s, sep string) string {
	parts := strings.Split(s, sep)
	if len(parts) > 2 || len(parts[len(parts)-1]) == 3 {
		return strings.ReplaceAll(s, sep, "")
	}
	return strings.Replace(s, sep, ".", 1)
}
