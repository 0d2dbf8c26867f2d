package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies fatal playback failures.
type ErrorKind int

const (
	// KindConfiguration covers palette/grid mismatches and unsupported terminals.
	KindConfiguration ErrorKind = iota + 1
	// KindDecode covers unrecoverable demux or codec failures.
	KindDecode
	// KindResource covers allocation failures at startup.
	KindResource
	// KindDisplay covers failures writing to the display.
	KindDisplay
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindDecode:
		return "decode"
	case KindResource:
		return "resource"
	case KindDisplay:
		return "display"
	default:
		return "unknown"
	}
}

// Sentinels matching any StageError of the corresponding kind via errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrDecode        = errors.New("decode error")
	ErrResource      = errors.New("resource error")
	ErrDisplay       = errors.New("display error")
)

// StageError is a fatal failure tagged with the stage that produced it.
type StageError struct {
	Stage string
	Kind  ErrorKind
	Err   error
}

// NewStageError wraps err with its stage name and kind.
func NewStageError(stage string, kind ErrorKind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *StageError) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrResource:
		return e.Kind == KindResource
	case ErrDisplay:
		return e.Kind == KindDisplay
	}
	return false
}

// Status is the terminal state of a playback session.
type Status int

const (
	StatusSuccess Status = iota
	StatusError
)

// String returns the string representation of the status.
func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "error"
}

// Outcome is the tagged result of a playback session.
type Outcome struct {
	Status Status
	Stage  string // Failing stage, empty on success
	Err    error  // *StageError on failure

	Frames      int           // Frames flushed to the display
	Discarded   int           // Non-video packets skipped
	Behind      int           // Frames whose processing exceeded the frame interval
	Overrun     time.Duration // Total time by which those frames exceeded it
	Interrupted bool          // Stopped by cancellation rather than end of stream

	// Session parameters, set once startup got far enough to know them.
	Codec    string
	Rows     int
	Cols     int
	Interval time.Duration // Pacing interval, 0 when unpaced
}

// Failed builds an error outcome from a StageError.
func Failed(err *StageError) Outcome {
	return Outcome{Status: StatusError, Stage: err.Stage, Err: err}
}
