// Package dateutil provides calendar-accurate service duration arithmetic.
//
// Durations are computed by anniversary-date comparison rather than dividing
// elapsed days by 365, so results stay exact across leap years: the fractional
// remainder of a service span is measured against the actual day count of the
// 12-month window starting at the last anniversary (365 or 366).
package dateutil

import "time"

// ServiceSpan describes the length of service between two dates.
type ServiceSpan struct {
	// WholeYears is the number of completed calendar years of service.
	WholeYears int
	// ExactYears is WholeYears plus the fractional remainder of the final,
	// partial year.
	ExactYears float64
	// TotalDays is the total number of calendar days between the two dates.
	TotalDays int
}

// DateOnly is the wire format for all service dates.
const DateOnly = "2006-01-02"

// ParseDate parses an ISO YYYY-MM-DD date at UTC midnight.
func ParseDate(v string) (time.Time, error) {
	return time.Parse(DateOnly, v)
}

// Service computes the calendar-accurate service span between start and end.
// An end before start yields a zero span.
func Service(start, end time.Time) ServiceSpan {
	start = midnightUTC(start)
	end = midnightUTC(end)

	if end.Before(start) {
		return ServiceSpan{}
	}

	// Whole years by anniversary comparison: if this year's anniversary has
	// not yet occurred, the year is not complete.
	whole := end.Year() - start.Year()
	if anniversary(start, whole).After(end) {
		whole--
	}

	last := anniversary(start, whole)
	next := anniversary(start, whole+1)

	spanDays := daysBetween(last, next) // 365 or 366
	fracDays := daysBetween(last, end)

	exact := float64(whole)
	if spanDays > 0 {
		exact += float64(fracDays) / float64(spanDays)
	}

	return ServiceSpan{
		WholeYears: whole,
		ExactYears: exact,
		TotalDays:  daysBetween(start, end),
	}
}

// anniversary returns the date offset whole years after start. A February 29
// start normalizes to March 1 in non-leap years.
func anniversary(start time.Time, years int) time.Time {
	return time.Date(start.Year()+years, start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
