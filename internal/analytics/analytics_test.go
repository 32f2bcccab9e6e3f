package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/brandpulse/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type row struct {
	date      time.Time
	label     string
	web, app  float64
	orders    int
	appOrders int
	gSpend    float64
	mSpend    float64
	gClicks   int
	mClicks   int
}

func (r row) metric() models.DailyMetric {
	m := models.DailyMetric{
		Label:        r.label,
		WebRevenue:   r.web,
		AppRevenue:   r.app,
		Orders:       r.orders,
		AppOrders:    r.appOrders,
		GoogleSpend:  r.gSpend,
		MetaSpend:    r.mSpend,
		GoogleClicks: r.gClicks,
		MetaClicks:   r.mClicks,
		Source:       models.SourceLive,
	}
	m.SetDate(r.date)
	m.Recompute()
	return m
}

func series(rows ...row) []models.DailyMetric {
	out := make([]models.DailyMetric, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.metric())
	}
	return out
}

func TestAggregateByDate(t *testing.T) {
	in := series(
		row{date: day(2026, 3, 2), label: "Acme", web: 100, app: 50, orders: 3, appOrders: 1, gSpend: 10, mSpend: 5},
		row{date: day(2026, 3, 1), label: "Acme", web: 10, orders: 1},
		row{date: day(2026, 3, 2), label: "Globex", web: 200, orders: 4, gSpend: 30, gClicks: 7},
	)

	out := AggregateByDate(in)
	require.Len(t, out, 2)
	assert.True(t, out[0].Date.Equal(day(2026, 3, 1)))
	assert.Equal(t, models.LabelAll, out[1].Label)
	assert.Equal(t, models.SourceAggregate, out[1].Source)
	assert.InDelta(t, 350.0, out[1].TotalRevenue, 1e-9)
	assert.Equal(t, 7, out[1].Orders)
	assert.InDelta(t, 45.0, out[1].TotalSpend, 1e-9)
	assert.InDelta(t, 50.0, out[1].AOV, 1e-9)
	assert.InDelta(t, 45.0/350.0, out[1].MER, 1e-9)
	assert.Equal(t, int(time.Monday), out[1].DayOfWeek)
}

func TestMerge_Associative(t *testing.T) {
	a := series(
		row{date: day(2026, 3, 1), label: "Acme", web: 100, orders: 2, gSpend: 10},
		row{date: day(2026, 3, 2), label: "Acme", web: 50, app: 25, orders: 1, appOrders: 1},
	)
	b := series(
		row{date: day(2026, 3, 2), label: "Globex", web: 70, orders: 3, mSpend: 20, mClicks: 9},
		row{date: day(2026, 3, 3), label: "Globex", web: 30, orders: 1},
	)

	whole := AggregateByDate(append(append([]models.DailyMetric{}, a...), b...))
	merged := Merge(AggregateByDate(a), AggregateByDate(b))
	require.Len(t, merged, len(whole))
	for i := range whole {
		assert.True(t, whole[i].Date.Equal(merged[i].Date))
		assert.InDelta(t, whole[i].TotalRevenue, merged[i].TotalRevenue, 1e-9)
		assert.InDelta(t, whole[i].TotalSpend, merged[i].TotalSpend, 1e-9)
		assert.Equal(t, whole[i].Orders, merged[i].Orders)
		assert.Equal(t, whole[i].TotalClicks, merged[i].TotalClicks)
		assert.InDelta(t, whole[i].MER, merged[i].MER, 1e-9)
		assert.InDelta(t, whole[i].AOV, merged[i].AOV, 1e-9)
	}
}

func TestPacing_FullMonthOnTarget(t *testing.T) {
	var rows []row
	for d := 1; d <= 31; d++ {
		rows = append(rows, row{date: day(2026, 3, d), label: "Acme", web: 1000, orders: 10, gSpend: 100})
	}
	target := models.MonthlyTarget{Month: "2026-03", Label: "Acme", RevenueTarget: 31000, OrdersTarget: 310, MERTarget: 0.1}

	res := Pacing(series(rows...), target, time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, 31, res.DaysPassed)
	assert.Equal(t, 31, res.DaysInMonth)
	assert.Equal(t, 31000.0, res.CurrentRevenue)
	assert.Equal(t, 100.0, res.PacingPercentage)
	assert.Equal(t, 100.0, res.ProjectedPercentage)
	assert.InDelta(t, 100.0, res.OrdersPacingPercentage, 1e-9)
	assert.InDelta(t, 0.1, res.CurrentMER, 1e-9)
	assert.True(t, res.OnTrack)
}

func TestPacing_MidMonth(t *testing.T) {
	in := series(
		row{date: day(2026, 2, 28), label: "Acme", web: 9999},
		row{date: day(2026, 4, 1), label: "Acme", web: 9999},
		row{date: day(2026, 4, 5), label: "Acme", web: 1000, orders: 5},
		row{date: day(2026, 4, 10), label: "Acme", web: 2000, orders: 5},
		row{date: day(2026, 4, 11), label: "Acme", web: 9999},
	)
	target := models.MonthlyTarget{Month: "2026-04", Label: "Acme", RevenueTarget: 30000, OrdersTarget: 40}

	res := Pacing(in, target, day(2026, 4, 10))
	assert.Equal(t, "2026-04", res.Month)
	assert.Equal(t, 10, res.DaysPassed)
	assert.Equal(t, 30, res.DaysInMonth)
	assert.InDelta(t, 12999.0, res.CurrentRevenue, 1e-9)
	assert.InDelta(t, 1299.9, res.DailyRate, 1e-9)
	assert.InDelta(t, 38997.0, res.ProjectedRevenue, 1e-6)
	assert.InDelta(t, 10000.0, res.ProratedTarget, 1e-6)
	assert.InDelta(t, 129.99, res.PacingPercentage, 1e-6)
	assert.True(t, res.OnTrack)
}

func TestPacing_NoTarget(t *testing.T) {
	res := Pacing(series(row{date: day(2026, 4, 1), label: "Acme", web: 10}), models.MonthlyTarget{}, day(2026, 4, 2))
	assert.Zero(t, res.PacingPercentage)
	assert.Zero(t, res.ProjectedPercentage)
	assert.False(t, res.OnTrack)
}

func TestMERStatus(t *testing.T) {
	tests := []struct {
		value float64
		want  Status
		th    float64
	}{
		{0.05, StatusExcellent, 0.10},
		{0.10, StatusExcellent, 0.10},
		{0.15, StatusGood, 0.20},
		{0.25, StatusWarning, 0.30},
		{0.45, StatusDanger, 0.30},
	}
	for _, tc := range tests {
		got := MERStatus(tc.value, DefaultMERThresholds)
		assert.Equal(t, tc.want, got.Status, "value %v", tc.value)
		assert.Equal(t, tc.th, got.Threshold, "value %v", tc.value)
		assert.Equal(t, tc.value, got.Value)
	}
}

func TestROASStatus(t *testing.T) {
	tests := []struct {
		value float64
		want  Status
	}{
		{12, StatusExcellent},
		{8, StatusExcellent},
		{6, StatusGood},
		{3, StatusWarning},
		{1.5, StatusDanger},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ROASStatus(tc.value, DefaultROASThresholds).Status, "value %v", tc.value)
	}
}

func TestChannelSplit(t *testing.T) {
	res := ChannelSplit(series(
		row{date: day(2026, 3, 1), label: "Acme", web: 300, app: 100, orders: 5, appOrders: 2},
		row{date: day(2026, 3, 2), label: "Acme", web: 300, app: 300, orders: 5, appOrders: 2},
	))
	assert.InDelta(t, 1000.0, res.TotalRevenue, 1e-9)
	assert.InDelta(t, 60.0, res.WebPercentage, 1e-9)
	assert.InDelta(t, 40.0, res.AppPercentage, 1e-9)
	assert.Equal(t, 6, res.WebOrders)
	assert.Equal(t, 4, res.AppOrders)
	assert.InDelta(t, 100.0, res.WebAOV, 1e-9)
}

func TestChannelSplit_Empty(t *testing.T) {
	res := ChannelSplit(nil)
	assert.Zero(t, res.WebPercentage)
	assert.Zero(t, res.AppPercentage)
}

func TestPlatformComparison(t *testing.T) {
	in := series(row{date: day(2026, 3, 1), label: "Acme", web: 1000, orders: 7, gSpend: 100, mSpend: 200, gClicks: 50, mClicks: 0})

	stats := PlatformComparison(in, nil)
	require.Len(t, stats, 2)

	g, m := stats[0], stats[1]
	assert.Equal(t, models.PlatformGoogle, g.Platform)
	assert.InDelta(t, 600.0, g.AttributedRevenue, 1e-9)
	assert.Equal(t, 4, g.AttributedOrders)
	assert.InDelta(t, 6.0, g.ROAS, 1e-9)
	assert.InDelta(t, 2.0, g.CPC, 1e-9)
	assert.InDelta(t, 25.0, g.CPA, 1e-9)

	assert.Equal(t, models.PlatformMeta, m.Platform)
	assert.Equal(t, 2, m.AttributedOrders)
	assert.InDelta(t, 2.0, m.ROAS, 1e-9)
	assert.Zero(t, m.CPC)
	assert.InDelta(t, 200.0/300.0*100, m.SpendShare, 1e-9)
}

func TestPlatformComparison_CustomSplit(t *testing.T) {
	in := series(row{date: day(2026, 3, 1), label: "Acme", web: 1000, orders: 10, gSpend: 100, mSpend: 100})
	stats := PlatformComparison(in, models.Attribution{models.PlatformGoogle: 0.5, models.PlatformMeta: 0.5})
	assert.InDelta(t, 500.0, stats[0].AttributedRevenue, 1e-9)
	assert.InDelta(t, 500.0, stats[1].AttributedRevenue, 1e-9)
}

func TestBenchmarkBrands(t *testing.T) {
	current := series(
		row{date: day(2026, 3, 1), label: "Acme", web: 1000, orders: 10, gSpend: 100},
		row{date: day(2026, 3, 2), label: "Acme", web: 500, orders: 5, gSpend: 50},
		row{date: day(2026, 3, 1), label: "Globex", web: 800, orders: 4, mSpend: 50},
		row{date: day(2026, 3, 1), label: "Initech", web: 100, orders: 1, mSpend: 100},
	)
	previous := series(
		row{date: day(2025, 3, 1), label: "Acme", web: 1200},
		row{date: day(2025, 3, 1), label: "Globex", web: 400},
		row{date: day(2025, 3, 1), label: "Umbrella", web: 999},
	)

	stats := BenchmarkBrands(current, previous)
	require.Len(t, stats, 3)
	assert.Equal(t, []string{"Acme", "Globex", "Initech"}, labels(stats))

	acme := stats[0]
	assert.InDelta(t, 1500.0, acme.Revenue, 1e-9)
	assert.InDelta(t, 10.0, acme.ROAS, 1e-9)
	assert.InDelta(t, 100.0, acme.AOV, 1e-9)
	assert.InDelta(t, 25.0, acme.Growth, 1e-9)
	assert.InDelta(t, 300.0, acme.GrowthAbsolute, 1e-9)

	initech := stats[2]
	assert.Zero(t, initech.Growth)
	assert.InDelta(t, 100.0, initech.GrowthAbsolute, 1e-9)

	assert.Equal(t, []string{"Globex", "Acme", "Initech"}, labels(RankByROAS(stats)))
	assert.Equal(t, []string{"Globex", "Acme", "Initech"}, labels(RankByGrowth(stats)))
	assert.Equal(t, []string{"Acme", "Globex", "Initech"}, labels(stats), "rankings must not reorder their input")
}

func labels(stats []BrandStats) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.Label
	}
	return out
}

func TestSummarize(t *testing.T) {
	s := Summarize(series(
		row{date: day(2026, 3, 2), label: "Acme", web: 800, app: 200, orders: 10, gSpend: 60, mSpend: 40, gClicks: 3, mClicks: 4},
		row{date: day(2026, 3, 1), label: "Globex", web: 1000, orders: 10, gSpend: 100},
	))
	assert.Equal(t, "2026-03-01", s.From)
	assert.Equal(t, "2026-03-02", s.To)
	assert.Equal(t, 2, s.Days)
	assert.Equal(t, 2, s.Labels)
	assert.InDelta(t, 2000.0, s.Revenue, 1e-9)
	assert.InDelta(t, 200.0, s.Spend, 1e-9)
	assert.Equal(t, 7, s.Clicks)
	assert.InDelta(t, 0.1, s.MER, 1e-9)
	assert.InDelta(t, 10.0, s.ROAS, 1e-9)
	assert.InDelta(t, 1800.0, s.ContributionMargin, 1e-9)
	assert.Equal(t, StatusExcellent, s.MERStatus.Status)
	assert.Equal(t, StatusExcellent, s.ROASStatus.Status)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.68, Round(2.675, 2))
	assert.Equal(t, 0.333, Round(1.0/3.0, 3))
	assert.Equal(t, -1.5, Round(-1.45, 1))
}
