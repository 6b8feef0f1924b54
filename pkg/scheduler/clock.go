package scheduler

import "time"

// Clock abstracts the current time so ticks can be driven deterministically in
// tests.
type Clock interface {
	Now() time.Time
}

type locationClock struct {
	loc *time.Location
}

// NewClock returns a Clock that reports wall time in the given location. All
// date arithmetic in the scheduler happens in this location, so a reminder for
// "today" means today where the reader lives, not UTC.
func NewClock(loc *time.Location) Clock {
	return &locationClock{loc: loc}
}

func (c *locationClock) Now() time.Time {
	return time.Now().In(c.loc)
}
