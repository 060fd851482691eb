package tool

import "time"

// DateOnly truncates t to UTC midnight. All lifecycle date matching is
// date-granular; time-of-day never participates in eligibility.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same UTC calendar day.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// FormatDate renders a date for emails and memos.
func FormatDate(t time.Time) string {
	return t.UTC().Format("January 2, 2006")
}
