package testfixtures

import (
	"sync"
	"time"

	"github.com/example/attendance-console/internal/application"
)

// Clock is a manually driven time source. Punch transitions and lateness both
// derive from the instant a service observes, so tests move the clock instead
// of sleeping.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock pinned to start, or to ReferenceTime when start is
// the zero value.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// Now reports the pinned instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Today reports the pinned instant formatted date-only, the key attendance
// records and rosters are stored under.
func (c *Clock) Today() string {
	return c.Now().Format(application.DateLayout)
}

// Set pins the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and reports the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	updated := c.now
	c.mu.Unlock()
	return updated
}

// AdvanceDays moves the clock forward by whole calendar days, keeping the
// wall-clock time. Useful for driving a record into the next attendance date.
func (c *Clock) AdvanceDays(days int) time.Time {
	c.mu.Lock()
	c.now = c.now.AddDate(0, 0, days)
	updated := c.now
	c.mu.Unlock()
	return updated
}

// NowFunc exposes the clock in the shape the service constructors accept. A
// nil clock falls back to the real time source.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}
