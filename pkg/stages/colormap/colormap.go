// Package colormap converts averaged YUV cells into palette indices.
package colormap

import (
	"errors"
	"fmt"

	"github.com/user/asciiplay/pkg/ports"
)

// ErrPaletteMismatch is returned when a registered mapping does not cover
// exactly the indices the mapper produces.
var ErrPaletteMismatch = errors.New("colormap: palette mismatch")

// cubeBase is the first index of the 6x6x6 colour cube.
const cubeBase = 16

// cubeLevels are the channel intensities of the six cube steps.
var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// probeLevels contains one channel value per cube step and both sides of the
// base8 threshold.
var probeLevels = [...]uint8{0, 43, 86, 127, 128, 171, 214, 255}

// base8 lists the eight base hues in index order: bit 0 red, bit 1 green, bit 2 blue.
var base8 = [8][3]uint8{
	{0, 0, 0},
	{205, 0, 0},
	{0, 205, 0},
	{205, 205, 0},
	{0, 0, 238},
	{205, 0, 205},
	{0, 205, 205},
	{229, 229, 229},
}

// Palette is the immutable colour configuration shared by the mapper and the display.
type Palette struct {
	mode    ports.PaletteMode
	mapping ports.PaletteMapping
}

// NewPalette builds the palette for mode.
func NewPalette(mode ports.PaletteMode) (*Palette, error) {
	m := ports.PaletteMapping{Mode: mode}
	switch mode {
	case ports.PaletteCube:
		for r := 0; r < 6; r++ {
			for g := 0; g < 6; g++ {
				for b := 0; b < 6; b++ {
					m.Entries = append(m.Entries, ports.PaletteEntry{
						Index: cubeIndex(r, g, b),
						R:     cubeLevels[r],
						G:     cubeLevels[g],
						B:     cubeLevels[b],
					})
				}
			}
		}
	case ports.PaletteBase8:
		for i, c := range base8 {
			m.Entries = append(m.Entries, ports.PaletteEntry{Index: i, R: c[0], G: c[1], B: c[2]})
		}
	case ports.PaletteMono:
		m.Entries = []ports.PaletteEntry{{Index: 0, R: 255, G: 255, B: 255}}
	default:
		return nil, fmt.Errorf("colormap: unknown palette mode %q", mode)
	}
	return &Palette{mode: mode, mapping: m}, nil
}

// Mode returns the palette mode.
func (p *Palette) Mode() ports.PaletteMode {
	return p.mode
}

// Mapping returns the mapping to register with the display.
// The entries slice is copied so the palette stays immutable.
func (p *Palette) Mapping() ports.PaletteMapping {
	entries := make([]ports.PaletteEntry, len(p.mapping.Entries))
	copy(entries, p.mapping.Entries)
	return ports.PaletteMapping{Mode: p.mapping.Mode, Entries: entries}
}

// Size returns the number of palette entries.
func (p *Palette) Size() int {
	return len(p.mapping.Entries)
}

// Mapper converts YUV triples to indices of its palette.
type Mapper struct {
	palette *Palette
}

// NewMapper creates a mapper bound to palette.
func NewMapper(palette *Palette) *Mapper {
	return &Mapper{palette: palette}
}

// Palette returns the palette the mapper produces indices for.
func (m *Mapper) Palette() *Palette {
	return m.palette
}

// Index returns the palette index for one YUV triple.
func (m *Mapper) Index(y, u, v uint8) int {
	r, g, b := ToRGB(y, u, v)
	return m.IndexRGB(r, g, b)
}

// IndexRGB returns the palette index for an RGB triple.
func (m *Mapper) IndexRGB(r, g, b uint8) int {
	switch m.palette.mode {
	case ports.PaletteCube:
		return cubeIndex(Quantize(r), Quantize(g), Quantize(b))
	case ports.PaletteBase8:
		idx := 0
		if r >= 128 {
			idx |= 1
		}
		if g >= 128 {
			idx |= 2
		}
		if b >= 128 {
			idx |= 4
		}
		return idx
	default:
		return 0
	}
}

// ToRGB converts BT.601 limited-range YUV to RGB using 8-bit fixed point.
func ToRGB(y, u, v uint8) (r, g, b uint8) {
	c := int(y) - 16
	d := int(u) - 128
	e := int(v) - 128
	return clamp((298*c + 409*e + 128) >> 8),
		clamp((298*c - 100*d - 208*e + 128) >> 8),
		clamp((298*c + 516*d + 128) >> 8)
}

// Quantize reduces a channel to one of six cube steps.
func Quantize(v uint8) int {
	return int(v) * 6 / 256
}

// Verify checks that mapping holds exactly the indices m can produce.
func Verify(m *Mapper, mapping ports.PaletteMapping) error {
	if mapping.Mode != m.palette.mode {
		return fmt.Errorf("%w: registered mode %q, mapper mode %q",
			ErrPaletteMismatch, mapping.Mode, m.palette.mode)
	}

	produced := make(map[int]bool)
	for _, r := range probeLevels {
		for _, g := range probeLevels {
			for _, b := range probeLevels {
				produced[m.IndexRGB(r, g, b)] = true
			}
		}
	}

	registered := make(map[int]bool, len(mapping.Entries))
	for _, e := range mapping.Entries {
		if registered[e.Index] {
			return fmt.Errorf("%w: index %d registered twice", ErrPaletteMismatch, e.Index)
		}
		registered[e.Index] = true
		if !produced[e.Index] {
			return fmt.Errorf("%w: index %d is never produced", ErrPaletteMismatch, e.Index)
		}
	}
	for idx := range produced {
		if !registered[idx] {
			return fmt.Errorf("%w: index %d is not registered", ErrPaletteMismatch, idx)
		}
	}
	return nil
}

func cubeIndex(r, g, b int) int {
	return cubeBase + 36*r + 6*g + b
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
