package scanning

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const maxDescriptionLength = 50

var (
	digitsOnlyPattern = regexp.MustCompile(`^\d+$`)

	isoDatePattern      = regexp.MustCompile(`\b(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})\b`)
	dayFirstDatePattern = regexp.MustCompile(`\b(\d{1,2})[-/.](\d{1,2})[-/.](\d{4}|\d{2})\b`)
)

// ExtractDescription picks the first meaningful line of a receipt, usually
// the merchant name.
func ExtractDescription(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if utf8.RuneCountInString(trimmed) <= 5 {
			continue
		}
		if strings.Contains(strings.ToLower(trimmed), "total") {
			continue
		}
		if digitsOnlyPattern.MatchString(trimmed) {
			continue
		}
		if utf8.RuneCountInString(trimmed) > maxDescriptionLength {
			trimmed = strings.TrimSpace(string([]rune(trimmed)[:maxDescriptionLength]))
		}
		return trimmed
	}
	return ""
}

// ExtractDate returns the first plausible transaction date printed on the
// receipt as YYYY-MM-DD, falling back to now's date. Slash/dash/dot dates
// are read day-first.
func ExtractDate(text string, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for _, line := range strings.Split(text, "\n") {
		for _, m := range isoDatePattern.FindAllStringSubmatch(line, -1) {
			if d, ok := buildDate(m[1], m[2], m[3], today); ok {
				return d
			}
		}
		for _, m := range dayFirstDatePattern.FindAllStringSubmatch(line, -1) {
			if d, ok := buildDate(m[3], m[2], m[1], today); ok {
				return d
			}
		}
	}
	return today.Format("2006-01-02")
}

func buildDate(year, month, day string, today time.Time) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	if len(year) == 2 {
		y += 2000
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 {
		return "", false
	}

	date := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range days (31/02 -> 02/03)
	if date.Day() != d {
		return "", false
	}
	if date.After(today) {
		return "", false
	}
	return date.Format("2006-01-02"), true
}
