// Package clock supplies the current time to the booking engine.
package clock

import (
	"time"

	"github.com/jinzhu/now"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant. Used in tests.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// TruncateToMinute drops seconds and below, keeping t's location.
func TruncateToMinute(t time.Time) time.Time {
	return now.With(t).BeginningOfMinute()
}
