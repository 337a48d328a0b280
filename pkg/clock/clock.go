// Package clock gives use cases an injectable notion of "now" and "today" in the
// business timezone.
package clock

import "time"

// Clock reads the current instant in a fixed location.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// New builds a clock. A nil now uses time.Now; a nil loc uses UTC.
func New(now func() time.Time, loc *time.Location) Clock {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return Clock{now: now, loc: loc}
}

// Fixed returns a clock frozen at t, interpreted in t's location.
func Fixed(t time.Time) Clock {
	return New(func() time.Time { return t }, t.Location())
}

// Now returns the current instant in the clock's location.
func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now().In(c.location())
}

// Today returns the current calendar date as UTC midnight.
func (c Clock) Today() time.Time {
	return Date(c.Now())
}

func (c Clock) location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Date drops the time of day and returns the calendar date of t as UTC midnight.
// Calendar dates are stored this way so every SQL dialect compares them the same.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b (negative if b is earlier).
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}
