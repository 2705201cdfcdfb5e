// Package timeutil provides the timestamp conventions used by Gradebook exports.
// Exports store times in UTC with millisecond precision and a trailing "Z".
// No external dependencies - uses only standard library.
package timeutil

import "time"

// ExportLayout is the layout of created_at / updated_at values.
const ExportLayout = "2006-01-02T15:04:05.000Z"

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// ExportTimestamp renders t in UTC, truncated to the second, with a
// zeroed millisecond field: 2024-03-01T10:11:12.000Z.
func ExportTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(ExportLayout)
}

