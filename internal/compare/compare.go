// Package compare aligns a current period with the same period one year earlier.
package compare

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AngelCh415/brandpulse/internal/models"
)

type Mode string

const (
	// ModeWeekday compares the Nth weekday of a month with the Nth same weekday of
	// that month one year earlier, so a Saturday is compared with a Saturday.
	ModeWeekday Mode = "weekday"
	// ModeDate compares identical calendar dates one year apart.
	ModeDate Mode = "date"
)

// ParseMode accepts "", "weekday" and "date".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeWeekday:
		return ModeWeekday, nil
	case ModeDate:
		return ModeDate, nil
	}
	return "", fmt.Errorf("unknown comparison mode %q", s)
}

// DailyVariance compares one current-period day with its counterpart.
type DailyVariance struct {
	Date                   time.Time `json:"-"`
	PreviousDate           time.Time `json:"-"`
	Matched                bool      `json:"matched"`
	CurrentRevenue         float64   `json:"current_revenue"`
	PreviousRevenue        float64   `json:"previous_revenue"`
	RevenueVariance        float64   `json:"revenue_variance"`
	RevenueVariancePercent float64   `json:"revenue_variance_percent"`
	OrdersVariance         int       `json:"orders_variance"`
	SpendVariance          float64   `json:"spend_variance"`
}

func (v DailyVariance) MarshalJSON() ([]byte, error) {
	type alias DailyVariance
	return json.Marshal(struct {
		Date         string `json:"date"`
		PreviousDate string `json:"previous_date"`
		alias
	}{
		Date:         v.Date.Format(models.DateLayout),
		PreviousDate: v.PreviousDate.Format(models.DateLayout),
		alias:        alias(v),
	})
}

// Comparison is the output of Compare. PreviousPeriod holds the counterpart of each
// current record in the same order; unmatched days get a zero record on the
// counterpart date.
type Comparison struct {
	Mode           Mode                 `json:"mode"`
	CurrentPeriod  []models.DailyMetric `json:"current_period"`
	PreviousPeriod []models.DailyMetric `json:"previous_period"`
	Variance       []DailyVariance      `json:"variance"`
}

// Compare finds the counterpart of every current record in previous and computes
// the per-day variance. A labelled current record is matched with the record of the
// same label on the counterpart date. A current record labelled models.LabelAll is
// matched with the sum of every previous record on that date, so an aggregated
// current series may be compared with a per-label reference series.
func Compare(current, previous []models.DailyMetric, mode Mode) Comparison {
	byKey := make(map[models.MetricKey]models.DailyMetric, len(previous))
	byDay := make(map[time.Time]models.DailyMetric, len(previous))
	for _, p := range previous {
		d := models.Day(p.Date)
		k := models.MetricKey{Date: d, Label: p.Label}
		if acc, ok := byKey[k]; ok {
			byKey[k] = sum(acc, p)
		} else {
			byKey[k] = p
		}
		if acc, ok := byDay[d]; ok {
			byDay[d] = sum(acc, p)
		} else {
			byDay[d] = p
		}
	}

	out := Comparison{
		Mode:           mode,
		CurrentPeriod:  make([]models.DailyMetric, len(current)),
		PreviousPeriod: make([]models.DailyMetric, 0, len(current)),
		Variance:       make([]DailyVariance, 0, len(current)),
	}
	copy(out.CurrentPeriod, current)

	for _, c := range current {
		target := Counterpart(c.Date, mode)
		var (
			prev models.DailyMetric
			ok   bool
		)
		if c.Label == models.LabelAll {
			prev, ok = byDay[target]
		} else {
			prev, ok = byKey[models.MetricKey{Date: target, Label: c.Label}]
		}
		if !ok {
			prev = models.EmptyMetric(target, c.Label)
		}
		out.PreviousPeriod = append(out.PreviousPeriod, prev)
		out.Variance = append(out.Variance, variance(c, prev, ok))
	}
	return out
}

func variance(c, p models.DailyMetric, matched bool) DailyVariance {
	v := DailyVariance{
		Date:            models.Day(c.Date),
		PreviousDate:    models.Day(p.Date),
		Matched:         matched,
		CurrentRevenue:  c.TotalRevenue,
		PreviousRevenue: p.TotalRevenue,
		RevenueVariance: c.TotalRevenue - p.TotalRevenue,
		OrdersVariance:  c.Orders - p.Orders,
		SpendVariance:   c.TotalSpend - p.TotalSpend,
	}
	if p.TotalRevenue != 0 {
		v.RevenueVariancePercent = v.RevenueVariance / p.TotalRevenue * 100
	}
	return v
}

func sum(a, b models.DailyMetric) models.DailyMetric {
	a.Add(b)
	if a.Label != b.Label {
		a.Label = models.LabelAll
	}
	a.Recompute()
	return a
}
