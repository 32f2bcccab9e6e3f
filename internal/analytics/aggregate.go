// Package analytics holds the pure calculators behind the dashboard KPIs. Nothing
// here reads the clock or touches I/O; callers pass the reference instant.
package analytics

import (
	"sort"
	"time"

	"github.com/AngelCh415/brandpulse/internal/models"
)

// AggregateByDate collapses all labels into one "All" record per date, sorted by
// date. Additive fields are summed and ratios recomputed from the sums.
func AggregateByDate(metrics []models.DailyMetric) []models.DailyMetric {
	byDay := make(map[time.Time]*models.DailyMetric, len(metrics))
	for _, m := range metrics {
		d := models.Day(m.Date)
		acc, ok := byDay[d]
		if !ok {
			acc = &models.DailyMetric{Label: models.LabelAll, Source: models.SourceAggregate}
			acc.SetDate(d)
			byDay[d] = acc
		}
		acc.Add(m)
	}

	out := make([]models.DailyMetric, 0, len(byDay))
	for _, m := range byDay {
		m.Recompute()
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Merge combines two series (raw or already aggregated) into one aggregated series.
// Merge(AggregateByDate(a), AggregateByDate(b)) equals AggregateByDate of a and b
// concatenated.
func Merge(a, b []models.DailyMetric) []models.DailyMetric {
	all := make([]models.DailyMetric, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return AggregateByDate(all)
}

// Totals sums every record into one, with ratios recomputed.
func Totals(metrics []models.DailyMetric) models.DailyMetric {
	var t models.DailyMetric
	for _, m := range metrics {
		t.Add(m)
	}
	t.Recompute()
	return t
}

// ByLabel groups records by label preserving input order inside each group.
func ByLabel(metrics []models.DailyMetric) map[string][]models.DailyMetric {
	out := map[string][]models.DailyMetric{}
	for _, m := range metrics {
		out[m.Label] = append(out[m.Label], m)
	}
	return out
}
