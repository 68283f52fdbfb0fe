package testfixtures

import (
	"sync"
	"time"
)

// Clock is the wall clock a test drives the scheduler tick and envelope
// timestamps with. It never moves on its own.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts the clock at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc is handed to the conductor in place of time.Now. A nil clock
// falls back to the real one.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock by d, typically one tick interval.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// At moves the clock to hour:minute on its current meeting day, in the
// clock's own location, and returns the new time. Schedule entries are
// written as HH:MM so tests read the same way.
func (c *Clock) At(hour, minute int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	y, m, d := c.now.Date()
	c.now = time.Date(y, m, d, hour, minute, 0, 0, c.now.Location())
	return c.now
}
