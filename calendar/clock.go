package calendar

import "time"

// =============================================================================
// TIME CLASSIFICATION - Pure functions of an instant
// =============================================================================
//
// All classification is done in the instant's own location. Callers that
// need a fixed business timezone convert before classifying.

const (
	// Office hours are Monday-Friday, [09:00, 17:00).
	officeStartHour = 9
	officeEndHour   = 17

	// Night shift runs from 22:00 to 06:00.
	// NOTE: an earlier sibling utility used 07:00 as the morning boundary;
	// 06:00 is the rule the subdivider has always applied and is canonical.
	nightStartHour = 22
	nightEndHour   = 6
)

// IsWeekend reports whether the instant falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsNightShift reports whether the instant lies in the night-shift window.
func IsNightShift(t time.Time) bool {
	h := t.Hour()
	return h >= nightStartHour || h < nightEndHour
}

// IsOfficeHours reports whether the instant lies inside office hours:
// Monday-Friday, 09:00 inclusive to 17:00 exclusive.
func IsOfficeHours(t time.Time) bool {
	if IsWeekend(t) {
		return false
	}
	h := t.Hour()
	return h >= officeStartHour && h < officeEndHour
}

// DurationHours returns end minus start in fractional hours. Rounding, if
// any, is the caller's policy.
func DurationHours(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}

// =============================================================================
// MONTH HELPERS - Used for monthly aggregation and cross-month splitting
// =============================================================================

// StartOfMonth returns the first instant of t's calendar month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfNextMonth returns the first instant of the month after t's.
func StartOfNextMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0)
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
