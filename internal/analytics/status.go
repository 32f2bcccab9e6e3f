package analytics

// Status is a traffic-light band for an efficiency ratio.
type Status string

const (
	StatusExcellent Status = "excellent"
	StatusGood      Status = "good"
	StatusWarning   Status = "warning"
	StatusDanger    Status = "danger"
)

// Thresholds are the band boundaries, ordered from the best band outwards.
type Thresholds struct {
	Excellent float64 `json:"excellent"`
	Good      float64 `json:"good"`
	Warning   float64 `json:"warning"`
}

var (
	// DefaultMERThresholds: spend/revenue, lower is better.
	DefaultMERThresholds = Thresholds{Excellent: 0.10, Good: 0.20, Warning: 0.30}
	// DefaultROASThresholds: revenue/spend, higher is better.
	DefaultROASThresholds = Thresholds{Excellent: 8, Good: 5, Warning: 3}
)

// StatusResult carries the classified value and the boundary that decided the band.
// For StatusDanger the threshold is the warning boundary that was crossed.
type StatusResult struct {
	Value     float64 `json:"value"`
	Status    Status  `json:"status"`
	Threshold float64 `json:"threshold"`
}

// MERStatus classifies a marketing efficiency ratio.
func MERStatus(value float64, th Thresholds) StatusResult {
	switch {
	case value <= th.Excellent:
		return StatusResult{Value: value, Status: StatusExcellent, Threshold: th.Excellent}
	case value <= th.Good:
		return StatusResult{Value: value, Status: StatusGood, Threshold: th.Good}
	case value <= th.Warning:
		return StatusResult{Value: value, Status: StatusWarning, Threshold: th.Warning}
	}
	return StatusResult{Value: value, Status: StatusDanger, Threshold: th.Warning}
}

// ROASStatus classifies a return on ad spend.
func ROASStatus(value float64, th Thresholds) StatusResult {
	switch {
	case value >= th.Excellent:
		return StatusResult{Value: value, Status: StatusExcellent, Threshold: th.Excellent}
	case value >= th.Good:
		return StatusResult{Value: value, Status: StatusGood, Threshold: th.Good}
	case value >= th.Warning:
		return StatusResult{Value: value, Status: StatusWarning, Threshold: th.Warning}
	}
	return StatusResult{Value: value, Status: StatusDanger, Threshold: th.Warning}
}
