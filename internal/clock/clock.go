package clock

import "time"

// Clock reports the current time. Aggregations read "now" through it so
// month and year boundaries can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// At returns a Fixed clock set to midnight UTC on the given date.
func At(year int, month time.Month, day int) Fixed {
	return Fixed(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}
