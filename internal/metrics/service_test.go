package metrics

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/brandpulse/internal/models"
	"github.com/AngelCh415/brandpulse/internal/store"
)

func metric(date time.Time, label string, revenue, spend float64, orders int) models.DailyMetric {
	m := models.DailyMetric{Label: label, WebRevenue: revenue, GoogleSpend: spend, Orders: orders, Source: models.SourceLive}
	m.SetDate(date)
	m.Recompute()
	return m
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	var rows []models.DailyMetric
	for d := 1; d <= 15; d++ {
		date := time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
		rows = append(rows, metric(date, "Acme", 80, 8, 1), metric(date, "Globex", 50, 1, 1))
	}
	for d := 1; d <= 10; d++ {
		date := time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
		rows = append(rows, metric(date, "Acme", 100, 10, 2), metric(date, "Globex", 50, 1, 1))
	}
	st := store.NewDatasetStore()
	st.Replace(models.HarmonizedDataset{
		RefreshID: "refresh-1",
		Metrics:   rows,
		Targets:   []models.MonthlyTarget{{Month: "2026-03", Label: "Acme", RevenueTarget: 3100, OrdersTarget: 62}},
		Events: []models.EventAnnotation{
			{Date: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), Title: "Promo", Category: "promo", Label: "Globex"},
			{Date: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), Title: "Outage", Category: "general"},
		},
		Sources:     []models.SourceInfo{{Kind: models.SourceLive, Rows: 50, Accepted: 50}},
		LastUpdated: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	})
	return NewService(st, nil, 0.25)
}

func TestQueryDaily(t *testing.T) {
	svc := newTestService(t)

	rows, err := svc.QueryDaily(url.Values{"from": {"2026-03-01"}, "to": {"2026-03-03"}, "label": {"ACME"}})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, "Acme", r.Label)
	}

	rows, err = svc.QueryDaily(url.Values{"from": {"2026-03-01"}, "to": {"2026-03-03"}, "aggregate": {"true"}})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, models.LabelAll, rows[0].Label)
	assert.Equal(t, 150.0, rows[0].TotalRevenue)

	rows, err = svc.QueryDaily(url.Values{"from": {"2026-03-01"}, "limit": {"4"}, "offset": {"2"}})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, 2, rows[0].DayOfMonth)
}

func TestQueryDaily_BadQuery(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.QueryDaily(url.Values{"from": {"03/01/2026"}})
	assert.ErrorIs(t, err, ErrBadQuery)

	_, err = svc.QueryDaily(url.Values{"from": {"2026-03-05"}, "to": {"2026-03-01"}})
	assert.ErrorIs(t, err, ErrBadQuery)
}

func TestQueryDaily_NoDataset(t *testing.T) {
	svc := NewService(store.NewDatasetStore(), nil, 0.25)
	_, err := svc.QueryDaily(url.Values{})
	assert.ErrorIs(t, err, store.ErrNoDataset)
	_, err = svc.Status()
	assert.ErrorIs(t, err, store.ErrNoDataset)
}

func TestQuerySummary(t *testing.T) {
	svc := newTestService(t)
	sum, err := svc.QuerySummary(url.Values{"from": {"2026-03-01"}, "to": {"2026-03-10"}})
	require.NoError(t, err)
	assert.Equal(t, 10, sum.Days)
	assert.Equal(t, 2, sum.Labels)
	assert.Equal(t, 1500.0, sum.Revenue)
	assert.Equal(t, 110.0, sum.Spend)
	assert.Equal(t, 0.073, sum.MER)
	assert.Equal(t, 13.64, sum.ROAS)
}

func TestQueryPacing(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.QueryPacing(url.Values{"as_of": {"2026-03-10"}})
	require.NoError(t, err)
	require.Len(t, res, 1)

	p := res[0]
	assert.Equal(t, "Acme", p.Label)
	assert.Equal(t, 10, p.DaysPassed)
	assert.Equal(t, 31, p.DaysInMonth)
	assert.Equal(t, 1000.0, p.CurrentRevenue)
	assert.Equal(t, 100.0, p.PacingPercentage)
	assert.Equal(t, 100.0, p.ProjectedPercentage)
	assert.Equal(t, 0.25, p.MERTarget)
	assert.True(t, p.OnTrack)

	_, err = svc.QueryPacing(url.Values{"as_of": {"tomorrow"}})
	assert.ErrorIs(t, err, ErrBadQuery)
}

func TestQueryPacing_UsesClock(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC) }
	res, err := svc.QueryPacing(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestQueryComparison_DefaultsToLatestMonth(t *testing.T) {
	svc := newTestService(t)
	cmp, err := svc.QueryComparison(url.Values{})
	require.NoError(t, err)
	require.Len(t, cmp.Variance, 10)

	v := cmp.Variance[0]
	assert.True(t, v.Matched)
	assert.Equal(t, "2025-03-02", v.PreviousDate.Format(models.DateLayout))
	assert.Equal(t, 150.0, v.CurrentRevenue)
	assert.Equal(t, 130.0, v.PreviousRevenue)
	assert.Equal(t, 15.38, v.RevenueVariancePercent)

	last := cmp.Variance[9]
	assert.Equal(t, "2025-03-11", last.PreviousDate.Format(models.DateLayout))
}

func TestQueryComparison_DateModeAndExplicitWindow(t *testing.T) {
	svc := newTestService(t)
	cmp, err := svc.QueryComparison(url.Values{
		"mode": {"date"}, "from": {"2026-03-01"}, "to": {"2026-03-02"}, "label": {"acme"},
		"compare_from": {"2025-03-01"}, "compare_to": {"2025-03-01"},
	})
	require.NoError(t, err)
	require.Len(t, cmp.Variance, 2)
	assert.True(t, cmp.Variance[0].Matched)
	assert.Equal(t, 25.0, cmp.Variance[0].RevenueVariancePercent)
	assert.False(t, cmp.Variance[1].Matched)

	_, err = svc.QueryComparison(url.Values{"mode": {"fiscal"}})
	assert.ErrorIs(t, err, ErrBadQuery)
}

func TestQueryChannelsAndPlatforms(t *testing.T) {
	svc := newTestService(t)
	ch, err := svc.QueryChannels(url.Values{"from": {"2026-03-01"}})
	require.NoError(t, err)
	assert.Equal(t, 100.0, ch.WebPercentage)
	assert.Equal(t, 0.0, ch.AppPercentage)

	pl, err := svc.QueryPlatforms(url.Values{"from": {"2026-03-01"}, "label": {"Acme"}})
	require.NoError(t, err)
	require.Len(t, pl, 2)
	assert.Equal(t, models.PlatformGoogle, pl[0].Platform)
	assert.Equal(t, 600.0, pl[0].AttributedRevenue)
	assert.Equal(t, 6.0, pl[0].ROAS)
	assert.Equal(t, 12, pl[0].AttributedOrders)
}

func TestQueryBrands(t *testing.T) {
	svc := newTestService(t)
	stats, err := svc.QueryBrands(url.Values{"from": {"2026-03-01"}, "to": {"2026-03-10"}, "rank": {"growth"}})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Acme", stats[0].Label)
	assert.Equal(t, 25.0, stats[0].Growth)
	assert.Equal(t, 200.0, stats[0].GrowthAbsolute)
	assert.Equal(t, 0.0, stats[1].Growth)

	stats, err = svc.QueryBrands(url.Values{"from": {"2026-03-01"}, "to": {"2026-03-10"}, "rank": {"roas"}})
	require.NoError(t, err)
	assert.Equal(t, "Globex", stats[0].Label)

	_, err = svc.QueryBrands(url.Values{"rank": {"mood"}})
	assert.ErrorIs(t, err, ErrBadQuery)
}

func TestQueryEvents(t *testing.T) {
	svc := newTestService(t)
	ev, err := svc.QueryEvents(url.Values{"label": {"acme"}})
	require.NoError(t, err)
	require.Len(t, ev, 1)
	assert.Equal(t, "Outage", ev[0].Title)

	ev, err = svc.QueryEvents(url.Values{"from": {"2026-03-05"}, "to": {"2026-03-05"}})
	require.NoError(t, err)
	require.Len(t, ev, 1)
	assert.Equal(t, "Promo", ev[0].Title)
}

func TestStatus(t *testing.T) {
	svc := newTestService(t)
	r, err := svc.Status()
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", r.RefreshID)
	assert.Equal(t, 50, r.Records)
	assert.Equal(t, []string{"Acme", "Globex"}, r.Labels)
	assert.Equal(t, "2025-03-01", r.From)
	assert.Equal(t, "2026-03-10", r.To)
	assert.Equal(t, 1, r.Targets)
}

func TestClampLimitOffset(t *testing.T) {
	tests := []struct {
		name                  string
		limit, offset, n      int
		wantLimit, wantOffset int
	}{
		{"defaults to everything", 0, 0, 10, 10, 0},
		{"negative offset", 5, -1, 10, 5, 0},
		{"offset past end", 5, 20, 10, 5, 10},
		{"cap", 100000, 0, 10, 5000, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, o := clampLimitOffset(tc.limit, tc.offset, tc.n)
			assert.Equal(t, tc.wantLimit, l)
			assert.Equal(t, tc.wantOffset, o)
		})
	}
}
