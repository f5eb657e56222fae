// Package dates provides day-granularity date arithmetic for itinerary events.
//
// The application convention is that event ranges are INCLUSIVE: both the
// start day and the end day belong to the event. External consumers that
// expect exclusive end dates (calendar widgets, ICS) convert at their
// boundary with ExclusiveEnd.
package dates

import "time"

const secondsPerDay = 86400

// jst is the fixed reference timezone used when resolving "today".
// LoadLocation can fail on systems without tzdata, so a fixed UTC+9
// zone is kept as a fallback.
var jst = loadJST()

func loadJST() *time.Location {
	if loc, err := time.LoadLocation("Asia/Tokyo"); err == nil {
		return loc
	}
	return time.FixedZone("JST", 9*3600)
}

// Midnight returns t truncated to midnight in its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day,
// ignoring time-of-day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ToEpochDays converts a date to whole days since the Unix epoch, using
// the UTC-normalized midnight of the date's year/month/day. Time-of-day
// and timezone are discarded, which keeps encoded values stable across
// encoding and decoding hosts.
func ToEpochDays(t time.Time) int64 {
	utc := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	secs := utc.Unix()
	// Floor division so pre-epoch dates stay consistent.
	if secs < 0 && secs%secondsPerDay != 0 {
		return secs/secondsPerDay - 1
	}
	return secs / secondsPerDay
}

// FromEpochDays converts a whole-day count back to a date at UTC midnight.
func FromEpochDays(days int64) time.Time {
	return time.Unix(days*secondsPerDay, 0).UTC()
}

// ValidRange reports whether end is on or after start at day granularity.
func ValidRange(start, end time.Time) bool {
	return ToEpochDays(end) >= ToEpochDays(start)
}

// Contains reports whether day falls within the inclusive [start, end] range.
func Contains(start, end, day time.Time) bool {
	d := ToEpochDays(day)
	return d >= ToEpochDays(start) && d <= ToEpochDays(end)
}

// Duration returns the number of days in an inclusive range.
func Duration(start, end time.Time) int {
	return int(ToEpochDays(end)-ToEpochDays(start)) + 1
}

// ExclusiveEnd converts an inclusive end date to the exclusive convention
// used by calendar widgets and ICS.
func ExclusiveEnd(end time.Time) time.Time {
	return end.AddDate(0, 0, 1)
}

// InclusiveEnd converts an exclusive end date back to the inclusive
// storage convention.
func InclusiveEnd(end time.Time) time.Time {
	return end.AddDate(0, 0, -1)
}

// TodayJST returns midnight of the current day in Japan Standard Time.
func TodayJST() time.Time {
	return Midnight(time.Now().In(jst))
}

// ParseDay parses a YYYY-MM-DD date string into a midnight UTC date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
