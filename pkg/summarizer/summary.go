// Package summarizer produces a report of a finished playback session.
package summarizer

import (
	"time"

	"github.com/user/asciiplay/pkg/pipeline"
)

// Summary contains the data collected during a playback session.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	Source      string

	// Session configuration
	Settings Settings

	// Session result
	Result Result
}

// Settings contains the playback configuration.
type Settings struct {
	Rows        int
	Cols        int
	ColorMode   string
	RampLength  int
	Interval    time.Duration // 0 = unpaced
	MaxDuration time.Duration // 0 = whole stream
}

// Result contains the outcome of the session.
type Result struct {
	Status      string
	Stage       string // Failing stage, empty on success
	Error       string
	Codec       string
	Frames      int
	Behind      int
	Overrun     time.Duration
	Discarded   int
	Interrupted bool
	Elapsed     time.Duration
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets the played source.
func (b *Builder) WithSource(source string) *Builder {
	b.summary.Source = source
	return b
}

// WithSettings sets the playback settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithOutcome copies the session result and the grid and pacing actually used.
func (b *Builder) WithOutcome(o pipeline.Outcome, elapsed time.Duration) *Builder {
	r := Result{
		Status:      o.Status.String(),
		Stage:       o.Stage,
		Codec:       o.Codec,
		Frames:      o.Frames,
		Behind:      o.Behind,
		Overrun:     o.Overrun,
		Discarded:   o.Discarded,
		Interrupted: o.Interrupted,
		Elapsed:     elapsed,
	}
	if o.Err != nil {
		r.Error = o.Err.Error()
	}
	b.summary.Result = r

	if o.Rows > 0 {
		b.summary.Settings.Rows, b.summary.Settings.Cols = o.Rows, o.Cols
	}
	b.summary.Settings.Interval = o.Interval
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
