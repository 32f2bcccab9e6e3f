package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Source tags where a DailyMetric came from.
type Source string

const (
	SourceHistorical Source = "historical"
	SourceLive       Source = "live"
	SourceFilled     Source = "filled"
	SourceTargets    Source = "targets"
	SourceEvents     Source = "events"
	SourceAggregate  Source = "aggregate"
)

// LabelAll is the label of records aggregated across labels.
const LabelAll = "All"

// Platform is a paid-media platform present in the feed.
type Platform string

const (
	PlatformGoogle Platform = "google"
	PlatformMeta   Platform = "meta"
)

// Platforms lists the paid-media platforms in display order.
var Platforms = []Platform{PlatformGoogle, PlatformMeta}

// Attribution is the share of web revenue (and web orders) credited to each platform.
// It is a fixed heuristic, not measured attribution.
type Attribution map[Platform]float64

// DefaultAttribution is used for the per-day attributed ROAS. Override it (or pass
// another Attribution to RecomputeWith) when the split changes.
var DefaultAttribution = Attribution{
	PlatformGoogle: 0.6,
	PlatformMeta:   0.4,
}

func (a Attribution) Share(p Platform) float64 { return a[p] }

// DailyMetric is one label's activity on one calendar day.
type DailyMetric struct {
	Date  time.Time `json:"-"`
	Label string    `json:"label"`

	WebRevenue   float64 `json:"web_revenue"`
	AppRevenue   float64 `json:"app_revenue"`
	TotalRevenue float64 `json:"total_revenue"`
	Orders       int     `json:"orders"`
	AppOrders    int     `json:"app_orders"`
	AOV          float64 `json:"aov"`

	GoogleSpend  float64 `json:"google_spend"`
	MetaSpend    float64 `json:"meta_spend"`
	TotalSpend   float64 `json:"total_spend"`
	GoogleClicks int     `json:"google_clicks"`
	MetaClicks   int     `json:"meta_clicks"`
	TotalClicks  int     `json:"total_clicks"`

	MER                float64 `json:"mer"`
	ContributionMargin float64 `json:"contribution_margin"`
	GoogleROAS         float64 `json:"google_roas"`
	MetaROAS           float64 `json:"meta_roas"`

	DayOfWeek   int `json:"day_of_week"`
	WeekOfMonth int `json:"week_of_month"`
	DayOfMonth  int `json:"day_of_month"`

	Source Source `json:"source"`
}

func (m DailyMetric) MarshalJSON() ([]byte, error) {
	type alias DailyMetric
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{Date: m.Date.Format(DateLayout), alias: alias(m)})
}

// WebOrders is the order count not coming from the app. Never negative.
func (m DailyMetric) WebOrders() int {
	if m.Orders < m.AppOrders {
		return 0
	}
	return m.Orders - m.AppOrders
}

// Add accumulates the additive fields of o. Call Recompute afterwards; ratios are
// never summed.
func (m *DailyMetric) Add(o DailyMetric) {
	m.WebRevenue += o.WebRevenue
	m.AppRevenue += o.AppRevenue
	m.Orders += o.Orders
	m.AppOrders += o.AppOrders
	m.GoogleSpend += o.GoogleSpend
	m.MetaSpend += o.MetaSpend
	m.GoogleClicks += o.GoogleClicks
	m.MetaClicks += o.MetaClicks
}

// Recompute derives totals and ratios from the additive fields.
func (m *DailyMetric) Recompute() { m.RecomputeWith(DefaultAttribution) }

func (m *DailyMetric) RecomputeWith(attr Attribution) {
	m.TotalRevenue = m.WebRevenue + m.AppRevenue
	m.TotalSpend = m.GoogleSpend + m.MetaSpend
	m.TotalClicks = m.GoogleClicks + m.MetaClicks
	m.AOV = SafeDiv(m.TotalRevenue, float64(m.Orders))
	m.MER = SafeDiv(m.TotalSpend, m.TotalRevenue)
	m.ContributionMargin = m.TotalRevenue - m.TotalSpend
	m.GoogleROAS = SafeDiv(m.WebRevenue*attr.Share(PlatformGoogle), m.GoogleSpend)
	m.MetaROAS = SafeDiv(m.WebRevenue*attr.Share(PlatformMeta), m.MetaSpend)
}

// SetDate stores the day and its calendar metadata.
func (m *DailyMetric) SetDate(t time.Time) {
	d := Day(t)
	m.Date = d
	m.DayOfWeek = int(d.Weekday())
	m.DayOfMonth = d.Day()
	m.WeekOfMonth = WeekOfMonth(d)
}

// Key identifies a record inside a harmonized dataset.
func (m DailyMetric) Key() MetricKey { return MetricKey{Date: m.Date, Label: m.Label} }

type MetricKey struct {
	Date  time.Time
	Label string
}

// EmptyMetric is a zero-valued record for a day a label had no row.
func EmptyMetric(date time.Time, label string) DailyMetric {
	m := DailyMetric{Label: label, Source: SourceFilled}
	m.SetDate(date)
	m.Recompute()
	return m
}

// MonthlyTarget is one label's goal for one calendar month.
type MonthlyTarget struct {
	Month         string  `json:"month"` // yyyy-MM
	Label         string  `json:"label"`
	RevenueTarget float64 `json:"revenue_target"`
	OrdersTarget  int     `json:"orders_target"`
	MERTarget     float64 `json:"mer_target"` // fraction
}

// EventAnnotation marks a business event on the trend charts.
type EventAnnotation struct {
	Date        time.Time `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Label       string    `json:"label,omitempty"`
}

func (e EventAnnotation) MarshalJSON() ([]byte, error) {
	type alias EventAnnotation
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{Date: e.Date.Format(DateLayout), alias: alias(e)})
}

// AppliesTo reports whether the event is global or scoped to one of labels.
func (e EventAnnotation) AppliesTo(labels map[string]struct{}) bool {
	if e.Label == "" || len(labels) == 0 {
		return true
	}
	_, ok := labels[strings.ToLower(e.Label)]
	return ok
}

// SourceInfo is the provenance of one ingested batch.
type SourceInfo struct {
	Kind     Source `json:"kind"`
	Year     int    `json:"year,omitempty"`
	Rows     int    `json:"rows"`
	Accepted int    `json:"accepted"`
	Errors   int    `json:"errors"`
}

// HarmonizedDataset is the immutable output of one ingestion cycle.
type HarmonizedDataset struct {
	RefreshID   string            `json:"refresh_id"`
	Metrics     []DailyMetric     `json:"metrics"`
	Targets     []MonthlyTarget   `json:"targets"`
	Events      []EventAnnotation `json:"events"`
	Sources     []SourceInfo      `json:"sources"`
	Warnings    []string          `json:"warnings"`
	LastUpdated time.Time         `json:"last_updated"`
}

// Target looks up the target for a canonical month key and label (case-insensitive).
func (d HarmonizedDataset) Target(month, label string) (MonthlyTarget, bool) {
	for _, t := range d.Targets {
		if t.Month == month && strings.EqualFold(t.Label, strings.TrimSpace(label)) {
			return t, true
		}
	}
	return MonthlyTarget{}, false
}

// Labels returns the distinct labels, sorted.
func (d HarmonizedDataset) Labels() []string {
	seen := map[string]struct{}{}
	for _, m := range d.Metrics {
		seen[m.Label] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Span returns the first and last day covered by the metrics.
func (d HarmonizedDataset) Span() (from, to time.Time, ok bool) {
	if len(d.Metrics) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return d.Metrics[0].Date, d.Metrics[len(d.Metrics)-1].Date, true
}
