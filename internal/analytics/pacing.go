package analytics

import (
	"time"

	"github.com/AngelCh415/brandpulse/internal/models"
)

// OnTrackThreshold is the projected percentage of target at or above which a month
// is considered on track.
const OnTrackThreshold = 95.0

// PacingResult is the month-to-date progress against a monthly target.
type PacingResult struct {
	Month       string `json:"month"`
	Label       string `json:"label"`
	DaysPassed  int    `json:"days_passed"`
	DaysInMonth int    `json:"days_in_month"`

	CurrentRevenue      float64 `json:"current_revenue"`
	RevenueTarget       float64 `json:"revenue_target"`
	ProratedTarget      float64 `json:"prorated_target"`
	DailyRate           float64 `json:"daily_rate"`
	ProjectedRevenue    float64 `json:"projected_revenue"`
	PacingPercentage    float64 `json:"pacing_percentage"`
	ProjectedPercentage float64 `json:"projected_percentage"`

	CurrentOrders          int     `json:"current_orders"`
	OrdersTarget           int     `json:"orders_target"`
	ProjectedOrders        float64 `json:"projected_orders"`
	OrdersPacingPercentage float64 `json:"orders_pacing_percentage"`

	CurrentMER float64 `json:"current_mer"`
	MERTarget  float64 `json:"mer_target"`

	OnTrack bool `json:"on_track"`
}

// Pacing measures the records of now's month up to and including now against
// target. Records outside that range are ignored, so callers may pass a wider series.
// Days passed counts the reference day itself.
func Pacing(metrics []models.DailyMetric, target models.MonthlyTarget, now time.Time) PacingResult {
	ref := models.Day(now)
	res := PacingResult{
		Month:         models.MonthKey(ref),
		Label:         target.Label,
		DaysPassed:    ref.Day(),
		DaysInMonth:   models.DaysIn(ref),
		RevenueTarget: target.RevenueTarget,
		OrdersTarget:  target.OrdersTarget,
		MERTarget:     target.MERTarget,
	}

	var mtd models.DailyMetric
	for _, m := range metrics {
		d := models.Day(m.Date)
		if d.Year() != ref.Year() || d.Month() != ref.Month() || d.After(ref) {
			continue
		}
		mtd.Add(m)
	}
	mtd.Recompute()

	res.CurrentRevenue = mtd.TotalRevenue
	res.CurrentOrders = mtd.Orders
	res.CurrentMER = mtd.MER

	// elapsed is exactly 1 on the last day, which keeps the 100% case exact.
	elapsed := float64(res.DaysPassed) / float64(res.DaysInMonth)
	res.DailyRate = res.CurrentRevenue / float64(res.DaysPassed)
	res.ProjectedRevenue = models.SafeDiv(res.CurrentRevenue, elapsed)
	res.ProratedTarget = res.RevenueTarget * elapsed
	res.PacingPercentage = models.SafeDiv(res.CurrentRevenue, res.ProratedTarget) * 100
	res.ProjectedPercentage = models.SafeDiv(res.ProjectedRevenue, res.RevenueTarget) * 100

	res.ProjectedOrders = models.SafeDiv(float64(res.CurrentOrders), elapsed)
	res.OrdersPacingPercentage = models.SafeDiv(float64(res.CurrentOrders), float64(res.OrdersTarget)*elapsed) * 100

	res.OnTrack = res.RevenueTarget > 0 && res.ProjectedPercentage >= OnTrackThreshold
	return res
}
