// Package textdisplay writes frames as plain text, one line per grid row,
// for output that is not a terminal. Colours are ignored.
package textdisplay

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/user/asciiplay/pkg/ports"
)

var (
	// ErrNoSize is returned when the display was created without a grid size.
	ErrNoSize = errors.New("textdisplay: grid size must be configured")

	// ErrPaletteRegistered is returned on a second RegisterPalette call.
	ErrPaletteRegistered = errors.New("textdisplay: palette already registered")

	// ErrNoPalette is returned when flushing before a palette was registered.
	ErrNoPalette = errors.New("textdisplay: no palette registered")
)

// Display renders glyph frames to a writer.
type Display struct {
	w          *bufio.Writer
	rows, cols int
	cells      []rune
	registered bool
	separator  string
}

// New creates a display of rows x cols writing to w. Frames are separated
// by separator (may be empty).
func New(w io.Writer, rows, cols int, separator string) *Display {
	d := &Display{
		w:         bufio.NewWriter(w),
		rows:      rows,
		cols:      cols,
		separator: separator,
	}
	if rows > 0 && cols > 0 {
		d.cells = make([]rune, rows*cols)
	}
	return d
}

// Dimensions returns the configured size.
func (d *Display) Dimensions() (rows, cols int, err error) {
	if d.cells == nil {
		return 0, 0, ErrNoSize
	}
	return d.rows, d.cols, nil
}

// RegisterPalette accepts any mapping once.
func (d *Display) RegisterPalette(m ports.PaletteMapping) error {
	if d.registered {
		return ErrPaletteRegistered
	}
	d.registered = true
	return nil
}

// SetCell stores a glyph. Positions outside the configured grid are dropped.
func (d *Display) SetCell(row, col int, glyph rune, colorIndex int) {
	if row < 0 || row >= d.rows || col < 0 || col >= d.cols {
		return
	}
	d.cells[row*d.cols+col] = glyph
}

// Flush writes the frame followed by the separator.
func (d *Display) Flush() error {
	if !d.registered {
		return ErrNoPalette
	}
	for r := 0; r < d.rows; r++ {
		for _, g := range d.cells[r*d.cols : (r+1)*d.cols] {
			if g == 0 {
				g = ' '
			}
			d.w.WriteRune(g)
		}
		d.w.WriteByte('\n')
	}
	d.w.WriteString(d.separator)
	if err := d.w.Flush(); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close flushes buffered output.
func (d *Display) Close() error {
	return d.w.Flush()
}

var _ ports.Display = (*Display)(nil)
