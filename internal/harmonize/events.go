package harmonize

import (
	"log/slog"
	"strings"

	"github.com/AngelCh415/brandpulse/internal/locale"
	"github.com/AngelCh415/brandpulse/internal/models"
	"github.com/AngelCh415/brandpulse/internal/transform"
)

const defaultEventCategory = "general"

// AddEvents parses the event annotations tab. Event dates are read leniently since
// the tab is filled in by hand.
func (h *Harmonizer) AddEvents(rows []map[string]string) BatchSummary {
	sum := BatchSummary{Source: models.SourceEvents}

	h.warnCollisions("events", rows)
	for i, row := range rows {
		f := transform.NewFields(row)
		rawDate := f.Get(transform.ColDate)
		title := f.Get(transform.ColTitle)
		if rawDate == "" && title == "" {
			sum.SkippedCount++
			continue
		}
		date, ok := locale.ParseLooseDate(rawDate)
		if !ok {
			sum.ErrorCount++
			h.warnf("events row %d: unparsable date %q", i+2, rawDate)
			continue
		}
		if title == "" {
			sum.ErrorCount++
			h.warnf("events row %d: missing title", i+2)
			continue
		}
		category := strings.ToLower(f.Get(transform.ColCategory))
		if category == "" {
			category = defaultEventCategory
		}
		h.events = append(h.events, models.EventAnnotation{
			Date:        models.Day(date),
			Title:       title,
			Description: f.Get(transform.ColDescription),
			Category:    category,
			Label:       f.Get(transform.ColLabel),
		})
		sum.SuccessCount++
	}

	h.record(sum, len(rows))
	h.log.Info("events parsed", slog.Int("success", sum.SuccessCount), slog.Int("errors", sum.ErrorCount))
	return sum
}
