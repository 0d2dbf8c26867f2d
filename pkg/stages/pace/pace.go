// Package pace holds playback to the stream's frame rate.
package pace

import (
	"context"
	"time"
)

// Clock abstracts time for the pacer.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration)
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep waits on a timer and wakes early on cancellation.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// SleepFor returns the wait needed after processing took p for a frame
// interval of t. It never returns a negative duration.
func SleepFor(t, p time.Duration) time.Duration {
	if p >= t {
		return 0
	}
	return t - p
}

// Pacer enforces the frame interval between frames. Frames that take longer
// than the interval are not compensated for later.
type Pacer struct {
	interval time.Duration
	clock    Clock

	behind  int
	overrun time.Duration
}

// New creates a pacer. A zero or negative interval disables pacing.
func New(interval time.Duration, clock Clock) *Pacer {
	if clock == nil {
		clock = SystemClock{}
	}
	if interval < 0 {
		interval = 0
	}
	return &Pacer{interval: interval, clock: clock}
}

// Interval returns the target frame interval (0 when pacing is off).
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Enabled reports whether the pacer sleeps at all.
func (p *Pacer) Enabled() bool {
	return p.interval > 0
}

// Now returns the pacer clock's current time.
func (p *Pacer) Now() time.Time {
	return p.clock.Now()
}

// Wait sleeps for the rest of the frame interval after work that ran from
// start to end, and returns the duration slept.
func (p *Pacer) Wait(ctx context.Context, start, end time.Time) time.Duration {
	if !p.Enabled() {
		return 0
	}
	processing := end.Sub(start)
	d := SleepFor(p.interval, processing)
	if d == 0 {
		if processing > p.interval {
			p.behind++
			p.overrun += processing - p.interval
		}
		return 0
	}
	p.clock.Sleep(ctx, d)
	return d
}

// Behind returns how many frames exceeded the interval.
func (p *Pacer) Behind() int {
	return p.behind
}

// Overrun returns the total time by which frames exceeded the interval.
func (p *Pacer) Overrun() time.Duration {
	return p.overrun
}
