// Package dates converts between the POS database's Cocoa-epoch timestamps
// and Go time values, and computes business-day boundaries for reporting.
//
// The database stores timestamps as seconds since the Cocoa reference date
// (2001-01-01 00:00:00 UTC), which is a fixed offset from the Unix epoch.
package dates

import (
	"fmt"
	"time"
)

// CocoaEpochOffset is the number of seconds between the Unix epoch and the
// Cocoa reference date (2001-01-01 00:00:00 UTC).
const CocoaEpochOffset = 978307200

// FromCocoa converts a Cocoa-epoch timestamp into a time.Time in the given
// location. Fractional seconds are preserved.
func FromCocoa(cocoa float64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	sec := int64(cocoa)
	nsec := int64((cocoa - float64(sec)) * float64(time.Second))
	return time.Unix(sec+CocoaEpochOffset, nsec).In(loc)
}

// ToCocoa converts a time.Time into a Cocoa-epoch timestamp.
func ToCocoa(t time.Time) float64 {
	return float64(t.UnixNano())/float64(time.Second) - CocoaEpochOffset
}

// ParseDayBoundary parses a clock time of the form "15:04:05" into an offset
// from midnight. The boundary assigns late-night transactions to the prior
// business day (a 01:30 sale on the 5th belongs to the 4th when the boundary
// is 02:00:00).
func ParseDayBoundary(s string) (time.Duration, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, fmt.Errorf("invalid day boundary %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// BusinessDayRange returns the [start, end) range of wall-clock time covered
// by the business day containing day's calendar date, shifted by the day
// boundary. The range is computed in day's location.
func BusinessDayRange(day time.Time, boundary time.Duration) (time.Time, time.Time) {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	start := midnight.Add(boundary)
	return start, start.AddDate(0, 0, 1)
}
