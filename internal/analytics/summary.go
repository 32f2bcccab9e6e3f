package analytics

import (
	"time"

	"github.com/AngelCh415/brandpulse/internal/models"
)

// Summary is the period totals shown on the KPI cards.
type Summary struct {
	From               string       `json:"from,omitempty"`
	To                 string       `json:"to,omitempty"`
	Days               int          `json:"days"`
	Labels             int          `json:"labels"`
	Revenue            float64      `json:"revenue"`
	WebRevenue         float64      `json:"web_revenue"`
	AppRevenue         float64      `json:"app_revenue"`
	Spend              float64      `json:"spend"`
	Orders             int          `json:"orders"`
	Clicks             int          `json:"clicks"`
	AOV                float64      `json:"aov"`
	MER                float64      `json:"mer"`
	ROAS               float64      `json:"roas"`
	ContributionMargin float64      `json:"contribution_margin"`
	MERStatus          StatusResult `json:"mer_status"`
	ROASStatus         StatusResult `json:"roas_status"`
}

func Summarize(metrics []models.DailyMetric) Summary {
	t := Totals(metrics)
	days := map[time.Time]struct{}{}
	labels := map[string]struct{}{}
	var first, last time.Time
	for _, m := range metrics {
		d := models.Day(m.Date)
		days[d] = struct{}{}
		labels[m.Label] = struct{}{}
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	s := Summary{
		Days:               len(days),
		Labels:             len(labels),
		Revenue:            t.TotalRevenue,
		WebRevenue:         t.WebRevenue,
		AppRevenue:         t.AppRevenue,
		Spend:              t.TotalSpend,
		Orders:             t.Orders,
		Clicks:             t.TotalClicks,
		AOV:                t.AOV,
		MER:                t.MER,
		ROAS:               models.SafeDiv(t.TotalRevenue, t.TotalSpend),
		ContributionMargin: t.ContributionMargin,
	}
	s.MERStatus = MERStatus(s.MER, DefaultMERThresholds)
	s.ROASStatus = ROASStatus(s.ROAS, DefaultROASThresholds)
	if len(metrics) > 0 {
		s.From = first.Format(models.DateLayout)
		s.To = last.Format(models.DateLayout)
	}
	return s
}
