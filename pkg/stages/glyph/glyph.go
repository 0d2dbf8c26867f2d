// Package glyph selects a brightness glyph from an ordered ramp.
package glyph

import (
	"errors"
	"fmt"
)

// ErrEmptyRamp is returned for ramps without glyphs.
var ErrEmptyRamp = errors.New("glyph: empty ramp")

// Built-in ramps, ordered from sparsest to densest.
const (
	ShortRamp    = " .:-=+*#%@"
	ExtendedRamp = " .'`^\",:;Il!i><~+_-?][}{1)(|\\/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$"
)

// Ramp is an ordered glyph sequence from sparsest to densest.
type Ramp struct {
	glyphs []rune
}

// NewRamp creates a ramp from a string ordered sparsest first.
func NewRamp(s string) (*Ramp, error) {
	glyphs := []rune(s)
	if len(glyphs) == 0 {
		return nil, ErrEmptyRamp
	}
	return &Ramp{glyphs: glyphs}, nil
}

// Named returns a built-in ramp by name ("short" or "extended").
func Named(name string) (*Ramp, error) {
	switch name {
	case "short":
		return NewRamp(ShortRamp)
	case "extended":
		return NewRamp(ExtendedRamp)
	default:
		return nil, fmt.Errorf("glyph: unknown ramp %q", name)
	}
}

// Len returns the number of glyphs.
func (r *Ramp) Len() int {
	return len(r.glyphs)
}

// Index returns the ramp position for a brightness value.
func (r *Ramp) Index(y uint8) int {
	i := int(y) * len(r.glyphs) / 256
	if i >= len(r.glyphs) {
		i = len(r.glyphs) - 1
	}
	return i
}

// Select returns the glyph for a brightness value.
func (r *Ramp) Select(y uint8) rune {
	return r.glyphs[r.Index(y)]
}
