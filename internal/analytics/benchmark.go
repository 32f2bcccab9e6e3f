package analytics

import (
	"sort"

	"github.com/AngelCh415/brandpulse/internal/models"
)

// BrandStats is one label's totals for a period plus growth against the
// comparison period.
type BrandStats struct {
	Label           string  `json:"label"`
	Revenue         float64 `json:"revenue"`
	Spend           float64 `json:"spend"`
	ROAS            float64 `json:"roas"`
	MER             float64 `json:"mer"`
	Orders          int     `json:"orders"`
	AOV             float64 `json:"aov"`
	PreviousRevenue float64 `json:"previous_revenue"`
	Growth          float64 `json:"growth"`
	GrowthAbsolute  float64 `json:"growth_absolute"`
}

// BenchmarkBrands aggregates current and comparison by label. Labels present only
// in comparison are not reported. Growth is 0 when the label had no revenue in the
// comparison period. Output is ordered by revenue.
func BenchmarkBrands(current, comparison []models.DailyMetric) []BrandStats {
	prev := map[string]float64{}
	for label, ms := range ByLabel(comparison) {
		prev[label] = Totals(ms).TotalRevenue
	}

	groups := ByLabel(current)
	out := make([]BrandStats, 0, len(groups))
	for label, ms := range groups {
		t := Totals(ms)
		s := BrandStats{
			Label:           label,
			Revenue:         t.TotalRevenue,
			Spend:           t.TotalSpend,
			ROAS:            models.SafeDiv(t.TotalRevenue, t.TotalSpend),
			MER:             t.MER,
			Orders:          t.Orders,
			AOV:             t.AOV,
			PreviousRevenue: prev[label],
		}
		s.GrowthAbsolute = s.Revenue - s.PreviousRevenue
		s.Growth = models.SafeDiv(s.GrowthAbsolute, s.PreviousRevenue) * 100
		out = append(out, s)
	}
	return RankByRevenue(out)
}

func RankByRevenue(stats []BrandStats) []BrandStats {
	return rank(stats, func(s BrandStats) float64 { return s.Revenue })
}

func RankByROAS(stats []BrandStats) []BrandStats {
	return rank(stats, func(s BrandStats) float64 { return s.ROAS })
}

func RankByGrowth(stats []BrandStats) []BrandStats {
	return rank(stats, func(s BrandStats) float64 { return s.Growth })
}

// rank returns a sorted copy, descending by key, ties broken by label.
func rank(stats []BrandStats, key func(BrandStats) float64) []BrandStats {
	out := make([]BrandStats, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := key(out[i]), key(out[j])
		if ki != kj {
			return ki > kj
		}
		return out[i].Label < out[j].Label
	})
	return out
}
