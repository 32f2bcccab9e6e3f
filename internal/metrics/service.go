package metrics

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/brandpulse/internal/analytics"
	"github.com/AngelCh415/brandpulse/internal/compare"
	"github.com/AngelCh415/brandpulse/internal/models"
	"github.com/AngelCh415/brandpulse/internal/store"
)

// ErrBadQuery wraps every query-string problem.
var ErrBadQuery = errors.New("bad query")

type Service struct {
	st         *store.DatasetStore
	attr       models.Attribution
	merDefault float64
	now        func() time.Time
}

func NewService(st *store.DatasetStore, attr models.Attribution, merTargetDefault float64) *Service {
	if attr == nil {
		attr = analytics.DefaultAttribution
	}
	return &Service{st: st, attr: attr, merDefault: merTargetDefault, now: time.Now}
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func csvSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = norm(p)
		if p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

type filter struct {
	from, to time.Time
	labels   map[string]struct{}
}

func (f filter) match(m models.DailyMetric) bool {
	if len(f.labels) == 0 {
		return true
	}
	_, ok := f.labels[norm(m.Label)]
	return ok
}

func parseDate(v url.Values, key string) (time.Time, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrBadQuery, key)
	}
	return t, nil
}

func parseWindow(v url.Values, fromKey, toKey string) (time.Time, time.Time, error) {
	from, err := parseDate(v, fromKey)
	if err != nil {
		return from, from, err
	}
	to, err := parseDate(v, toKey)
	if err != nil {
		return from, to, err
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return from, to, fmt.Errorf("%w: %s after %s", ErrBadQuery, fromKey, toKey)
	}
	return from, to, nil
}

func parseFilter(v url.Values) (filter, error) {
	from, to, err := parseWindow(v, "from", "to")
	if err != nil {
		return filter{}, err
	}
	return filter{from: from, to: to, labels: csvSet(v.Get("label"))}, nil
}

// monthToDate fills an open window with the month of the latest record.
func (s *Service) monthToDate(f filter) (filter, error) {
	if !f.from.IsZero() && !f.to.IsZero() {
		return f, nil
	}
	ds, err := s.st.Current()
	if err != nil {
		return f, err
	}
	_, last, ok := ds.Span()
	if !ok {
		return f, nil
	}
	if f.to.IsZero() {
		f.to = last
	}
	if f.from.IsZero() {
		f.from = time.Date(f.to.Year(), f.to.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return f, nil
}

func (s *Service) rows(f filter) ([]models.DailyMetric, error) {
	return s.st.Query(f.from, f.to, f.match)
}

func (s *Service) QueryDaily(v url.Values) ([]models.DailyMetric, error) {
	f, err := parseFilter(v)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(f)
	if err != nil {
		return nil, err
	}
	if b, _ := strconv.ParseBool(v.Get("aggregate")); b {
		rows = analytics.AggregateByDate(rows)
	}

	limit := atoiDef(v.Get("limit"), 0)
	offset := atoiDef(v.Get("offset"), 0)
	limit, offset = clampLimitOffset(limit, offset, len(rows))
	page := paginate(rows, limit, offset)

	out := make([]models.DailyMetric, len(page))
	for i, m := range page {
		out[i] = roundMetric(m)
	}
	return out, nil
}

func (s *Service) QuerySummary(v url.Values) (analytics.Summary, error) {
	f, err := parseFilter(v)
	if err != nil {
		return analytics.Summary{}, err
	}
	rows, err := s.rows(f)
	if err != nil {
		return analytics.Summary{}, err
	}
	sum := analytics.Summarize(rows)
	sum.Revenue = round2(sum.Revenue)
	sum.WebRevenue = round2(sum.WebRevenue)
	sum.AppRevenue = round2(sum.AppRevenue)
	sum.Spend = round2(sum.Spend)
	sum.AOV = round2(sum.AOV)
	sum.MER = round3(sum.MER)
	sum.ROAS = round2(sum.ROAS)
	sum.ContributionMargin = round2(sum.ContributionMargin)
	sum.MERStatus.Value = round3(sum.MERStatus.Value)
	sum.ROASStatus.Value = round2(sum.ROASStatus.Value)
	return sum, nil
}

// QueryPacing computes pacing for every selected label that has a target in the
// month of as_of (default: today).
func (s *Service) QueryPacing(v url.Values) ([]analytics.PacingResult, error) {
	asOf := s.now().UTC()
	if raw := v.Get("as_of"); raw != "" {
		t, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: as_of must be YYYY-MM-DD", ErrBadQuery)
		}
		asOf = t
	}
	ds, err := s.st.Current()
	if err != nil {
		return nil, err
	}
	month := models.MonthKey(asOf)
	f := filter{
		from:   time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC),
		to:     models.Day(asOf),
		labels: csvSet(v.Get("label")),
	}
	rows, err := s.rows(f)
	if err != nil {
		return nil, err
	}
	byLabel := analytics.ByLabel(rows)

	out := []analytics.PacingResult{}
	for _, label := range ds.Labels() {
		if len(f.labels) > 0 {
			if _, ok := f.labels[norm(label)]; !ok {
				continue
			}
		}
		target, ok := s.st.Target(month, label)
		if !ok {
			continue
		}
		if target.MERTarget == 0 {
			target.MERTarget = s.merDefault
		}
		p := analytics.Pacing(byLabel[label], target, asOf)
		out = append(out, roundPacing(p))
	}
	return out, nil
}

// QueryComparison aggregates the selected labels and aligns them with the reference
// period. The reference window defaults to PreviousWindow of the current one and
// can be set with compare_from/compare_to.
func (s *Service) QueryComparison(v url.Values) (compare.Comparison, error) {
	mode, err := compare.ParseMode(v.Get("mode"))
	if err != nil {
		return compare.Comparison{}, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}
	cur, prev, err := s.periods(v, mode)
	if err != nil {
		return compare.Comparison{}, err
	}
	cmp := compare.Compare(analytics.AggregateByDate(cur), prev, mode)
	for i := range cmp.CurrentPeriod {
		cmp.CurrentPeriod[i] = roundMetric(cmp.CurrentPeriod[i])
	}
	for i := range cmp.PreviousPeriod {
		cmp.PreviousPeriod[i] = roundMetric(cmp.PreviousPeriod[i])
	}
	for i := range cmp.Variance {
		cmp.Variance[i].RevenueVariance = round2(cmp.Variance[i].RevenueVariance)
		cmp.Variance[i].RevenueVariancePercent = round2(cmp.Variance[i].RevenueVariancePercent)
		cmp.Variance[i].SpendVariance = round2(cmp.Variance[i].SpendVariance)
	}
	return cmp, nil
}

// periods returns the current-window rows and the reference-window rows for the
// same label selection.
func (s *Service) periods(v url.Values, mode compare.Mode) ([]models.DailyMetric, []models.DailyMetric, error) {
	f, err := parseFilter(v)
	if err != nil {
		return nil, nil, err
	}
	f, err = s.monthToDate(f)
	if err != nil {
		return nil, nil, err
	}
	cur, err := s.rows(f)
	if err != nil {
		return nil, nil, err
	}

	pf, pt, err := parseWindow(v, "compare_from", "compare_to")
	if err != nil {
		return nil, nil, err
	}
	if pf.IsZero() || pt.IsZero() {
		pf, pt = compare.PreviousWindow(f.from, f.to, mode)
	}
	prev, err := s.rows(filter{from: pf, to: pt, labels: f.labels})
	if err != nil {
		return nil, nil, err
	}
	return cur, prev, nil
}

func (s *Service) QueryChannels(v url.Values) (analytics.ChannelSplitResult, error) {
	f, err := parseFilter(v)
	if err != nil {
		return analytics.ChannelSplitResult{}, err
	}
	rows, err := s.rows(f)
	if err != nil {
		return analytics.ChannelSplitResult{}, err
	}
	res := analytics.ChannelSplit(rows)
	res.WebRevenue = round2(res.WebRevenue)
	res.AppRevenue = round2(res.AppRevenue)
	res.TotalRevenue = round2(res.TotalRevenue)
	res.WebPercentage = round2(res.WebPercentage)
	res.AppPercentage = round2(res.AppPercentage)
	res.WebAOV = round2(res.WebAOV)
	res.AppAOV = round2(res.AppAOV)
	return res, nil
}

func (s *Service) QueryPlatforms(v url.Values) ([]analytics.PlatformStats, error) {
	f, err := parseFilter(v)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(f)
	if err != nil {
		return nil, err
	}
	stats := analytics.PlatformComparison(rows, s.attr)
	for i := range stats {
		st := &stats[i]
		st.Spend = round2(st.Spend)
		st.SpendShare = round2(st.SpendShare)
		st.AttributedRevenue = round2(st.AttributedRevenue)
		st.ROAS = round2(st.ROAS)
		st.CPC = round3(st.CPC)
		st.CPA = round2(st.CPA)
	}
	return stats, nil
}

// QueryBrands benchmarks labels against the date-aligned reference period. rank
// selects the ordering: revenue (default), roas or growth.
func (s *Service) QueryBrands(v url.Values) ([]analytics.BrandStats, error) {
	var rank func([]analytics.BrandStats) []analytics.BrandStats
	switch norm(v.Get("rank")) {
	case "", "revenue":
		rank = analytics.RankByRevenue
	case "roas":
		rank = analytics.RankByROAS
	case "growth":
		rank = analytics.RankByGrowth
	default:
		return nil, fmt.Errorf("%w: rank must be revenue, roas or growth", ErrBadQuery)
	}
	cur, prev, err := s.periods(v, compare.ModeDate)
	if err != nil {
		return nil, err
	}
	stats := rank(analytics.BenchmarkBrands(cur, prev))
	for i := range stats {
		b := &stats[i]
		b.Revenue = round2(b.Revenue)
		b.Spend = round2(b.Spend)
		b.ROAS = round2(b.ROAS)
		b.MER = round3(b.MER)
		b.AOV = round2(b.AOV)
		b.PreviousRevenue = round2(b.PreviousRevenue)
		b.Growth = round2(b.Growth)
		b.GrowthAbsolute = round2(b.GrowthAbsolute)
	}
	return stats, nil
}

func (s *Service) QueryEvents(v url.Values) ([]models.EventAnnotation, error) {
	f, err := parseFilter(v)
	if err != nil {
		return nil, err
	}
	return s.st.Events(f.from, f.to, f.labels)
}

// StatusReport describes the loaded dataset.
type StatusReport struct {
	RefreshID   string              `json:"refresh_id"`
	LastUpdated time.Time           `json:"last_updated"`
	Records     int                 `json:"records"`
	Labels      []string            `json:"labels"`
	From        string              `json:"from,omitempty"`
	To          string              `json:"to,omitempty"`
	Targets     int                 `json:"targets"`
	Events      int                 `json:"events"`
	Sources     []models.SourceInfo `json:"sources"`
	Warnings    []string            `json:"warnings"`
}

func (s *Service) Status() (StatusReport, error) {
	ds, err := s.st.Current()
	if err != nil {
		return StatusReport{}, err
	}
	r := StatusReport{
		RefreshID:   ds.RefreshID,
		LastUpdated: ds.LastUpdated,
		Records:     len(ds.Metrics),
		Labels:      ds.Labels(),
		Targets:     len(ds.Targets),
		Events:      len(ds.Events),
		Sources:     ds.Sources,
		Warnings:    ds.Warnings,
	}
	if from, to, ok := ds.Span(); ok {
		r.From = from.Format(models.DateLayout)
		r.To = to.Format(models.DateLayout)
	}
	return r, nil
}

func roundMetric(m models.DailyMetric) models.DailyMetric {
	m.WebRevenue = round2(m.WebRevenue)
	m.AppRevenue = round2(m.AppRevenue)
	m.TotalRevenue = round2(m.TotalRevenue)
	m.AOV = round2(m.AOV)
	m.GoogleSpend = round2(m.GoogleSpend)
	m.MetaSpend = round2(m.MetaSpend)
	m.TotalSpend = round2(m.TotalSpend)
	m.MER = round3(m.MER)
	m.ContributionMargin = round2(m.ContributionMargin)
	m.GoogleROAS = round2(m.GoogleROAS)
	m.MetaROAS = round2(m.MetaROAS)
	return m
}

func roundPacing(p analytics.PacingResult) analytics.PacingResult {
	p.CurrentRevenue = round2(p.CurrentRevenue)
	p.ProratedTarget = round2(p.ProratedTarget)
	p.DailyRate = round2(p.DailyRate)
	p.ProjectedRevenue = round2(p.ProjectedRevenue)
	p.PacingPercentage = round2(p.PacingPercentage)
	p.ProjectedPercentage = round2(p.ProjectedPercentage)
	p.ProjectedOrders = round2(p.ProjectedOrders)
	p.OrdersPacingPercentage = round2(p.OrdersPacingPercentage)
	p.CurrentMER = round3(p.CurrentMER)
	return p
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 5000 {
		limit = 5000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}

func round2(f float64) float64 { return analytics.Round(f, 2) }
func round3(f float64) float64 { return analytics.Round(f, 3) }
