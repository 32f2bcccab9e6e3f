package analytics

import (
	"math"

	"github.com/AngelCh415/brandpulse/internal/models"
)

// DefaultAttribution is the web-revenue split used when no other is configured.
var DefaultAttribution = models.DefaultAttribution

// ChannelSplitResult is the web versus app split of a period.
type ChannelSplitResult struct {
	WebRevenue    float64 `json:"web_revenue"`
	AppRevenue    float64 `json:"app_revenue"`
	TotalRevenue  float64 `json:"total_revenue"`
	WebPercentage float64 `json:"web_percentage"`
	AppPercentage float64 `json:"app_percentage"`
	WebOrders     int     `json:"web_orders"`
	AppOrders     int     `json:"app_orders"`
	WebAOV        float64 `json:"web_aov"`
	AppAOV        float64 `json:"app_aov"`
}

func ChannelSplit(metrics []models.DailyMetric) ChannelSplitResult {
	t := Totals(metrics)
	return ChannelSplitResult{
		WebRevenue:    t.WebRevenue,
		AppRevenue:    t.AppRevenue,
		TotalRevenue:  t.TotalRevenue,
		WebPercentage: models.SafeDiv(t.WebRevenue, t.TotalRevenue) * 100,
		AppPercentage: models.SafeDiv(t.AppRevenue, t.TotalRevenue) * 100,
		WebOrders:     t.WebOrders(),
		AppOrders:     t.AppOrders,
		WebAOV:        models.SafeDiv(t.WebRevenue, float64(t.WebOrders())),
		AppAOV:        models.SafeDiv(t.AppRevenue, float64(t.AppOrders)),
	}
}

// PlatformStats is one paid-media platform's share of a period.
type PlatformStats struct {
	Platform          models.Platform `json:"platform"`
	Spend             float64         `json:"spend"`
	SpendShare        float64         `json:"spend_share"`
	Clicks            int             `json:"clicks"`
	AttributedRevenue float64         `json:"attributed_revenue"`
	AttributedOrders  int             `json:"attributed_orders"`
	ROAS              float64         `json:"roas"`
	CPC               float64         `json:"cpc"`
	CPA               float64         `json:"cpa"`
}

// PlatformComparison credits web revenue and web orders to each platform using the
// fixed attribution split. Attributed orders are floored.
func PlatformComparison(metrics []models.DailyMetric, attr models.Attribution) []PlatformStats {
	if attr == nil {
		attr = DefaultAttribution
	}
	t := Totals(metrics)
	webOrders := float64(t.WebOrders())

	out := make([]PlatformStats, 0, len(models.Platforms))
	for _, p := range models.Platforms {
		s := PlatformStats{Platform: p}
		switch p {
		case models.PlatformGoogle:
			s.Spend, s.Clicks = t.GoogleSpend, t.GoogleClicks
		case models.PlatformMeta:
			s.Spend, s.Clicks = t.MetaSpend, t.MetaClicks
		}
		share := attr.Share(p)
		s.AttributedRevenue = t.WebRevenue * share
		s.AttributedOrders = int(math.Floor(webOrders * share))
		s.SpendShare = models.SafeDiv(s.Spend, t.TotalSpend) * 100
		s.ROAS = models.SafeDiv(s.AttributedRevenue, s.Spend)
		s.CPC = models.SafeDiv(s.Spend, float64(s.Clicks))
		s.CPA = models.SafeDiv(s.Spend, float64(s.AttributedOrders))
		out = append(out, s)
	}
	return out
}
