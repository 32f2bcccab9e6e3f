// Package harmonize merges the feed's row batches into one gap-free dataset.
//
// A Harmonizer is a single-owner builder for one ingestion cycle: add batches,
// call Harmonize (as often as needed, it does not touch the accumulated batches),
// then Clear before reusing it for the next cycle.
package harmonize

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/brandpulse/internal/models"
	"github.com/AngelCh415/brandpulse/internal/transform"
)

// BatchSummary reports what one Add call accepted.
type BatchSummary struct {
	Source       models.Source `json:"source"`
	Year         int           `json:"year,omitempty"`
	SuccessCount int           `json:"success_count"`
	ErrorCount   int           `json:"error_count"`
	SkippedCount int           `json:"skipped_count"`
}

type batch struct {
	kind    models.Source
	year    int
	metrics []models.DailyMetric
}

type Harmonizer struct {
	log  *slog.Logger
	attr models.Attribution
	now  func() time.Time

	batches  []batch
	targets  []models.MonthlyTarget
	events   []models.EventAnnotation
	sources  []models.SourceInfo
	warnings []string
}

type Option func(*Harmonizer)

func WithLogger(log *slog.Logger) Option { return func(h *Harmonizer) { h.log = log } }

func WithAttribution(attr models.Attribution) Option {
	return func(h *Harmonizer) { h.attr = attr }
}

func WithClock(now func() time.Time) Option { return func(h *Harmonizer) { h.now = now } }

func New(opts ...Option) *Harmonizer {
	h := &Harmonizer{
		log:  slog.New(slog.DiscardHandler),
		attr: models.DefaultAttribution,
		now:  time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// AddHistoricalBatch parses rows of a past-year tab. year is kept as provenance.
func (h *Harmonizer) AddHistoricalBatch(rows []map[string]string, year int) BatchSummary {
	return h.addMetricBatch(rows, models.SourceHistorical, year)
}

// AddLiveBatch parses rows of the current feed tab.
func (h *Harmonizer) AddLiveBatch(rows []map[string]string) BatchSummary {
	return h.addMetricBatch(rows, models.SourceLive, 0)
}

func (h *Harmonizer) addMetricBatch(rows []map[string]string, kind models.Source, year int) BatchSummary {
	sum := BatchSummary{Source: kind, Year: year}
	b := batch{kind: kind, year: year, metrics: make([]models.DailyMetric, 0, len(rows))}
	name := batchName(kind, year)
	h.warnCollisions(name, rows)

	for i, row := range rows {
		res := transform.TransformWith(row, kind, h.attr)
		switch res.Kind {
		case transform.KindEmpty:
			sum.SkippedCount++
		case transform.KindValid:
			sum.SuccessCount++
			b.metrics = append(b.metrics, res.Metric)
		default:
			sum.ErrorCount++
			h.warnf("%s row %d: %s", name, i+2, res.Reason)
		}
	}

	h.batches = append(h.batches, b)
	h.record(sum, len(rows))
	if sum.ErrorCount > 0 {
		h.warnf("%s: %d of %d rows could not be parsed", name, sum.ErrorCount, len(rows))
	}
	h.log.Info("batch parsed",
		slog.String("batch", name),
		slog.Int("success", sum.SuccessCount),
		slog.Int("errors", sum.ErrorCount),
		slog.Int("skipped", sum.SkippedCount))
	return sum
}

// Harmonize merges every batch added so far. Duplicate (date, label) pairs are
// resolved live-over-historical, and later-batch-wins within the same kind. With
// fillMissingDays every label gets a zero record for each day of the observed span
// it has no row for. The result is sorted by date, then label, and shares no memory
// with the accumulator.
func (h *Harmonizer) Harmonize(fillMissingDays bool) models.HarmonizedDataset {
	ordered := make([]batch, len(h.batches))
	copy(ordered, h.batches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(ordered[i].kind) < rank(ordered[j].kind)
	})

	warnings := make([]string, len(h.warnings))
	copy(warnings, h.warnings)

	index := make(map[models.MetricKey]int)
	metrics := make([]models.DailyMetric, 0)
	for _, b := range ordered {
		for _, m := range b.metrics {
			k := m.Key()
			if i, dup := index[k]; dup {
				warnings = append(warnings, fmt.Sprintf("duplicate %s on %s: %s row replaces %s row",
					m.Label, m.Date.Format(models.DateLayout), m.Source, metrics[i].Source))
				metrics[i] = m
				continue
			}
			index[k] = len(metrics)
			metrics = append(metrics, m)
		}
	}

	if fillMissingDays {
		var warn string
		metrics, warn = fillGaps(metrics, index)
		if warn != "" {
			warnings = append(warnings, warn)
			h.log.Warn(warn)
		}
	}

	sort.Slice(metrics, func(i, j int) bool {
		if !metrics[i].Date.Equal(metrics[j].Date) {
			return metrics[i].Date.Before(metrics[j].Date)
		}
		return metrics[i].Label < metrics[j].Label
	})

	targets := make([]models.MonthlyTarget, len(h.targets))
	copy(targets, h.targets)
	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].Month != targets[j].Month {
			return targets[i].Month < targets[j].Month
		}
		return targets[i].Label < targets[j].Label
	})

	events := make([]models.EventAnnotation, len(h.events))
	copy(events, h.events)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })

	sources := make([]models.SourceInfo, len(h.sources))
	copy(sources, h.sources)

	return models.HarmonizedDataset{
		RefreshID:   uuid.NewString(),
		Metrics:     metrics,
		Targets:     targets,
		Events:      events,
		Sources:     sources,
		Warnings:    warnings,
		LastUpdated: h.now().UTC(),
	}
}

// maxFillDays bounds the gap-fill span. A wider span almost always means a mistyped
// year in one row, and filling it would create zero records for every label and day.
const maxFillDays = 3660

func fillGaps(metrics []models.DailyMetric, index map[models.MetricKey]int) ([]models.DailyMetric, string) {
	if len(metrics) == 0 {
		return metrics, ""
	}
	first, last := metrics[0].Date, metrics[0].Date
	labels := map[string]struct{}{}
	for _, m := range metrics {
		if m.Date.Before(first) {
			first = m.Date
		}
		if m.Date.After(last) {
			last = m.Date
		}
		labels[m.Label] = struct{}{}
	}
	if days := int(last.Sub(first).Hours()/24) + 1; days > maxFillDays {
		return metrics, fmt.Sprintf("date span %s..%s covers %d days, more than %d; missing days not filled",
			first.Format(models.DateLayout), last.Format(models.DateLayout), days, maxFillDays)
	}

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		for label := range labels {
			k := models.MetricKey{Date: d, Label: label}
			if _, ok := index[k]; ok {
				continue
			}
			metrics = append(metrics, models.EmptyMetric(d, label))
		}
	}
	return metrics, ""
}

// Clear drops everything accumulated so the builder can serve the next cycle.
func (h *Harmonizer) Clear() {
	h.batches = nil
	h.targets = nil
	h.events = nil
	h.sources = nil
	h.warnings = nil
}

// Warnings returns the data-quality log collected by the Add calls.
func (h *Harmonizer) Warnings() []string {
	out := make([]string, len(h.warnings))
	copy(out, h.warnings)
	return out
}

// Warn records a warning raised outside the Add calls, e.g. a missing optional tab.
func (h *Harmonizer) Warn(msg string) {
	h.warnings = append(h.warnings, msg)
	h.log.Warn(msg)
}

// warnCollisions flags headers of the batch that read as the same column. Rows of a
// parsed tab share their keys, so the first row stands for the batch.
func (h *Harmonizer) warnCollisions(name string, rows []map[string]string) {
	if len(rows) == 0 {
		return
	}
	headers := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		headers = append(headers, k)
	}
	for _, c := range transform.HeaderCollisions(headers) {
		h.Warn(fmt.Sprintf("%s: headers %q all read as %q, the first non-empty one in that order is used",
			name, c.Headers, c.Key))
	}
}

func (h *Harmonizer) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	h.warnings = append(h.warnings, msg)
	h.log.Debug("row skipped", slog.String("reason", msg))
}

func (h *Harmonizer) record(sum BatchSummary, rows int) {
	h.sources = append(h.sources, models.SourceInfo{
		Kind:     sum.Source,
		Year:     sum.Year,
		Rows:     rows,
		Accepted: sum.SuccessCount,
		Errors:   sum.ErrorCount,
	})
}

func rank(kind models.Source) int {
	if kind == models.SourceLive {
		return 1
	}
	return 0
}

func batchName(kind models.Source, year int) string {
	if year > 0 {
		return fmt.Sprintf("%s %d", kind, year)
	}
	return string(kind)
}
