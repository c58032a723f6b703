package testutil

import (
	"sync"
	"time"
)

// Epoch is the default start time of SteppingClock.
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// SteppingClock is a deterministic wall clock for tests. Each call to Now
// advances it by a fixed step, so successive timestamps differ but are
// identical across runs.
//
// Thread-safety: all methods are safe for concurrent use.
type SteppingClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	n     int64
}

// NewSteppingClock creates a clock starting at start and advancing by step.
// The first call to Now returns start.
func NewSteppingClock(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{start: start, step: step}
}

// NewClock returns a SteppingClock at Epoch advancing one second per call.
func NewClock() *SteppingClock {
	return NewSteppingClock(Epoch, time.Second)
}

// Now returns the current time and advances the clock.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Calls returns how many times Now has been called.
func (c *SteppingClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset rewinds the clock so the next Now returns the start time again.
func (c *SteppingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
