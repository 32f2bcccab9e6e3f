package harmonize

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/AngelCh415/brandpulse/internal/locale"
	"github.com/AngelCh415/brandpulse/internal/models"
	"github.com/AngelCh415/brandpulse/internal/transform"
)

var (
	monthYearRe = regexp.MustCompile(`^(\d{1,2})[-/.](\d{4})$`)
	yearMonthRe = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})$`)
)

// NormalizeMonth maps "1-2025", "01-2025", "1/2025" and "2025-1" to "2025-01". A full
// day-month-year date is accepted too and reduced to its month.
func NormalizeMonth(raw string) (string, bool) {
	var year, month string
	if m := monthYearRe.FindStringSubmatch(raw); m != nil {
		month, year = m[1], m[2]
	} else if m := yearMonthRe.FindStringSubmatch(raw); m != nil {
		year, month = m[1], m[2]
	} else if t, ok := locale.ParseLocalDate(raw); ok {
		return models.MonthKey(t), true
	} else {
		return "", false
	}
	n, err := strconv.Atoi(month)
	if err != nil || n < 1 || n > 12 {
		return "", false
	}
	return fmt.Sprintf("%s-%02d", year, n), true
}

// NormalizeMER turns a percentage written as e.g. 18 into the fraction 0.18.
func NormalizeMER(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}

// AddTargets parses the monthly targets tab. A later row for the same month and
// label replaces the earlier one.
func (h *Harmonizer) AddTargets(rows []map[string]string) BatchSummary {
	sum := BatchSummary{Source: models.SourceTargets}
	pos := make(map[string]int, len(h.targets))
	for i, t := range h.targets {
		pos[t.Month+"|"+t.Label] = i
	}

	h.warnCollisions("targets", rows)
	for i, row := range rows {
		f := transform.NewFields(row)
		rawMonth := f.Get(transform.ColMonth)
		label := f.Get(transform.ColLabel)
		if rawMonth == "" && label == "" {
			sum.SkippedCount++
			continue
		}
		month, ok := NormalizeMonth(rawMonth)
		if !ok {
			sum.ErrorCount++
			h.warnf("targets row %d: unparsable month %q", i+2, rawMonth)
			continue
		}
		if label == "" {
			sum.ErrorCount++
			h.warnf("targets row %d: missing label for %s", i+2, month)
			continue
		}

		t := models.MonthlyTarget{
			Month:         month,
			Label:         label,
			RevenueTarget: locale.ParseDecimal(f.Get(transform.ColRevenueTarget)),
			OrdersTarget:  locale.ParseCount(f.Get(transform.ColOrdersTarget)),
			MERTarget:     NormalizeMER(locale.ParseDecimal(f.Get(transform.ColMERTarget))),
		}
		key := month + "|" + label
		if j, dup := pos[key]; dup {
			h.warnf("targets row %d: duplicate target for %s %s replaces earlier row", i+2, label, month)
			h.targets[j] = t
		} else {
			pos[key] = len(h.targets)
			h.targets = append(h.targets, t)
		}
		sum.SuccessCount++
	}

	h.record(sum, len(rows))
	h.log.Info("targets parsed", slog.Int("success", sum.SuccessCount), slog.Int("errors", sum.ErrorCount))
	return sum
}
