// Package clock supplies wall-clock time to the rules that depend on "today".
//
// Validators resolve the current date once, at construction, from a Clock.
// Production code uses System; tests pin time with Fixed so date windows and
// CURRENT_YEAR style tokens are reproducible.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System is the real UTC clock.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a settable clock for tests.
//
// Thread-safety: all methods are safe for concurrent use.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed creates a clock frozen at t (converted to UTC).
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t.UTC()}
}

// Date is shorthand for a fixed clock at midnight UTC on the given day.
func Date(year int, month time.Month, day int) *Fixed {
	return NewFixed(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Now returns the frozen time.
func (c *Fixed) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Fixed) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}

// Advance moves the clock forward by d.
func (c *Fixed) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
