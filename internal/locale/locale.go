// Package locale parses the European-formatted cells of the spreadsheet feed:
// comma decimal numbers with period grouping, and day-month-year dates.
package locale

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dmyLayout = "2-1-2006"
	isoLayout = "2006-01-02"
)

// ParseDecimal converts "1.633,50" to 1633.5. Blank or unparsable input yields 0.
func ParseDecimal(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// ParseCount parses a count cell. Fractions are truncated.
func ParseCount(raw string) int {
	return int(ParseDecimal(raw))
}

// ParseLocalDate tries strict d-m-yyyy, then the same after folding "." and "/" into
// "-", then ISO yyyy-mm-dd. The result is UTC midnight of the written calendar day.
// ok is false only when every attempt fails.
func ParseLocalDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dmyLayout, s); err == nil {
		return t, true
	}
	folded := foldSeparators(s)
	if t, err := time.Parse(dmyLayout, folded); err == nil {
		return t, true
	}
	if t, err := time.Parse(isoLayout, folded); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ParseLooseDate is ParseLocalDate plus a lenient d-m-yyyy reading that skips format
// validation: the first hyphenated token is split into numbers and out-of-range days
// roll over the way the calendar does (31-4-2026 becomes 1 May).
func ParseLooseDate(raw string) (time.Time, bool) {
	if t, ok := ParseLocalDate(raw); ok {
		return t, true
	}
	fields := strings.Fields(foldSeparators(strings.TrimSpace(raw)))
	if len(fields) == 0 {
		return time.Time{}, false
	}
	parts := strings.Split(fields[0], "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2000
	}
	if day <= 0 || month <= 0 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func foldSeparators(s string) string {
	return strings.NewReplacer(".", "-", "/", "-").Replace(s)
}
