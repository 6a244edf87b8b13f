// Package dateutil provides calendar-local date key arithmetic.
//
// All functions operate on canonical YYYY-MM-DD keys in the local time
// zone. Weekday indexing is Monday=0 .. Sunday=6.
package dateutil

import (
	"fmt"
	"time"
)

// Layout is the canonical date key format.
const Layout = "2006-01-02"

// Key returns the canonical date key for t in the local calendar.
func Key(t time.Time) string {
	return t.Format(Layout)
}

// Today returns the date key for the current moment.
func Today() string {
	return Key(time.Now())
}

// Parse converts a date key back into a local-midnight time.Time.
func Parse(key string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("dateutil: parse %q: %w", key, err)
	}
	return t, nil
}

// Valid reports whether key is a well-formed YYYY-MM-DD date.
func Valid(key string) bool {
	_, err := Parse(key)
	return err == nil
}

// AddDays returns the date key n calendar days from key, handling
// month and year rollover. Invalid keys are returned unchanged; callers
// are expected to validate keys at the boundary.
func AddDays(key string, n int) string {
	t, err := Parse(key)
	if err != nil {
		return key
	}
	return Key(t.AddDate(0, 0, n))
}

// DayOfWeek returns the weekday index of key with Monday=0 .. Sunday=6,
// remapping Go's native Sunday=0 convention. Invalid keys return 0.
func DayOfWeek(key string) int {
	t, err := Parse(key)
	if err != nil {
		return 0
	}
	return Weekday(t)
}

// Weekday returns the Monday-indexed weekday of t.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsWeekend reports whether key falls on Saturday or Sunday.
func IsWeekend(key string) bool {
	return DayOfWeek(key) >= 5
}

// StartOfWeek returns the Monday of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	return t.AddDate(0, 0, -Weekday(t))
}

// Pretty returns a human-readable weekday + day + month string for a
// date key, e.g. "Monday, 2 January". Invalid keys yield "".
func Pretty(key string) string {
	t, err := Parse(key)
	if err != nil {
		return ""
	}
	return t.Format("Monday, 2 January")
}
