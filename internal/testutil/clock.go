package testutil

import (
	"sync"
	"time"
)

// Epoch is the time a DeterministicClock starts at.
var Epoch = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

// DeterministicClock is a wall clock that only moves when told to.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewDeterministicClock creates a clock reading Epoch.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{now: Epoch}
}

// Now returns the current time. Pass the method value wherever a
// func() time.Time is expected.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *DeterministicClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *DeterministicClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Reset moves the clock back to Epoch.
func (c *DeterministicClock) Reset() {
	c.Set(Epoch)
}
