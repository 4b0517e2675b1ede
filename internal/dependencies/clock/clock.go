package clock

import "time"

// Clock stamps game records and published events
type Clock interface {
	Now() time.Time
}

// UTCClock reads the system clock. Times are returned in UTC so that
// records round-trip identically through every storage backend.
type UTCClock struct{}

// New creates a new UTCClock
func New() UTCClock {
	return UTCClock{}
}

// Now returns the current time in UTC
func (UTCClock) Now() time.Time {
	return time.Now().UTC()
}
