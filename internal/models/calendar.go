package models

import "time"

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Day drops the time of day and pins the calendar date to UTC midnight without
// shifting it across a zone boundary.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days of the month containing t.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WeekOfMonth is ceil((dayOfMonth + offset) / 7) where offset is the Monday-based
// weekday index of the first of the month. Months that start late in the week and
// have 30 or 31 days can reach 6.
func WeekOfMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	return (t.Day() + offset + 6) / 7
}

func MonthKey(t time.Time) string { return t.Format(MonthLayout) }

// SafeDiv returns 0 when b is 0.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
