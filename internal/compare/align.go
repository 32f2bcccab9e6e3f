package compare

import (
	"time"

	"github.com/AngelCh415/brandpulse/internal/models"
)

// Counterpart returns the reference-period day for date under mode.
func Counterpart(date time.Time, mode Mode) time.Time {
	d := models.Day(date)
	if mode == ModeDate {
		return sameDayLastYear(d)
	}
	return weekdayLastYear(d)
}

// WeekdayOccurrence is the 1-based ordinal of date's weekday within its month:
// the 9th is always the 2nd occurrence of its weekday.
func WeekdayOccurrence(date time.Time) int {
	return (date.Day()-1)/7 + 1
}

// NthWeekday scans the month day by day and returns the nth occurrence of wd.
func NthWeekday(year int, month time.Month, wd time.Weekday, n int) (time.Time, bool) {
	count := 0
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if d.Weekday() != wd {
			continue
		}
		count++
		if count == n {
			return d, true
		}
	}
	return time.Time{}, false
}

func weekdayLastYear(d time.Time) time.Time {
	n := WeekdayOccurrence(d)
	if t, ok := NthWeekday(d.Year()-1, d.Month(), d.Weekday(), n); ok {
		return t
	}
	return sameDayLastYear(d)
}

// sameDayLastYear keeps the day of month, clamped to the month's length so that
// 29 February maps to 28 February instead of rolling into March.
func sameDayLastYear(d time.Time) time.Time {
	first := time.Date(d.Year()-1, d.Month(), 1, 0, 0, 0, 0, time.UTC)
	day := d.Day()
	if last := models.DaysIn(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// PreviousWindow returns the reference-period window to select for the current
// window [from, to]. In weekday mode the counterparts can sit up to six days
// outside the naive shifted window, so the window is widened by a week on each side.
func PreviousWindow(from, to time.Time, mode Mode) (time.Time, time.Time) {
	pf, pt := sameDayLastYear(models.Day(from)), sameDayLastYear(models.Day(to))
	if mode == ModeDate {
		return pf, pt
	}
	return pf.AddDate(0, 0, -7), pt.AddDate(0, 0, 7)
}
