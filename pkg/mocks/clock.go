package mocks

import (
	"context"
	"sync"
	"time"
)

// Clock is a manual clock. Sleep advances it instead of blocking.
type Clock struct {
	mu  sync.Mutex
	now time.Time

	// Step is added to the clock on every Now call to simulate work.
	Step time.Duration

	// SleepFunc is called before the clock advances on Sleep.
	SleepFunc func(ctx context.Context, d time.Duration)

	// Recorded calls for verification
	Sleeps []time.Duration
}

// NewClock creates a clock starting at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.Step)
	return t
}

func (c *Clock) Sleep(ctx context.Context, d time.Duration) {
	if c.SleepFunc != nil {
		c.SleepFunc(ctx, d)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sleeps = append(c.Sleeps, d)
	c.now = c.now.Add(d)
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
