// Package puzzle handles puzzle-number arithmetic. The puzzle number
// increments by exactly one per calendar day from a fixed epoch, so
// every date/number conversion in the tracker goes through this package
// and the single epoch chosen in configuration.
package puzzle

import "time"

// DefaultEpoch is the date of puzzle #0.
var DefaultEpoch = time.Date(2021, time.June, 19, 0, 0, 0, 0, time.UTC)

// NumberForDate returns the puzzle number for the given calendar date.
func NumberForDate(epoch, date time.Time) int {
	return daysBetween(epoch, date)
}

// DateForNumber returns the calendar date of the given puzzle number.
func DateForNumber(epoch time.Time, number int) time.Time {
	y, m, d := epoch.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, number)
}

// Plausible reports whether a parsed puzzle number is close enough to
// today's to be trusted. Numbers outside the window are almost always
// misparsed historical messages and must not be attributed to today.
func Plausible(number, today, tolerance int) bool {
	diff := number - today
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// WeekWindow returns the inclusive [start, end] puzzle-number range for
// the Monday-to-Sunday week containing now.
func WeekWindow(epoch, now time.Time) (start, end int) {
	today := NumberForDate(epoch, now)
	// time.Weekday has Sunday=0; shift so Monday=0.
	weekday := (int(now.Weekday()) + 6) % 7
	start = today - weekday
	end = start + 6
	return start, end
}

// daysBetween counts whole calendar days from a to b, ignoring the
// time of day on either side.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	at := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bt := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bt.Sub(at) / (24 * time.Hour))
}
