// Package pipeline provides the building blocks shared by the playback stages:
// the stage abstraction, the reusable cell grid and the tagged outcome types.
package pipeline

import "context"

// Stage turns one input into one output per call. The render stage
// implements it with a decoded frame in and a drawn frame out; stages keep
// their buffers between calls and are not safe for concurrent use.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}
