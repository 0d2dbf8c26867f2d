// Package ansiterm implements the display on an ANSI terminal: 256-colour or
// 8-colour foreground escapes, alternate screen, one write per frame.
package ansiterm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"github.com/user/asciiplay/pkg/ports"
	"golang.org/x/term"
)

const (
	escHome       = "\x1b[H"
	escReset      = "\x1b[0m"
	escClear      = "\x1b[2J"
	escEnterAlt   = "\x1b[?1049h"
	escExitAlt    = "\x1b[?1049l"
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
	noColor       = -1
	colors256     = 256
)

var (
	// ErrNotTerminal is returned when the output is not a terminal.
	ErrNotTerminal = errors.New("ansiterm: output is not a terminal")

	// ErrUnsupportedColors is returned when the palette needs more colours
	// than the terminal offers.
	ErrUnsupportedColors = errors.New("ansiterm: terminal does not support palette")

	// ErrPaletteRegistered is returned on a second RegisterPalette call.
	ErrPaletteRegistered = errors.New("ansiterm: palette already registered")

	// ErrNoPalette is returned when flushing before a palette was registered.
	ErrNoPalette = errors.New("ansiterm: no palette registered")

	// ErrUnknownColor is returned when a cell uses an unregistered colour index.
	ErrUnknownColor = errors.New("ansiterm: colour index not registered")
)

// Options configures the terminal.
type Options struct {
	// Colors overrides colour detection when non-zero.
	Colors int
}

type cell struct {
	glyph rune
	color int
}

// Terminal draws frames on an ANSI terminal.
type Terminal struct {
	out    io.Writer
	fd     int
	colors int

	rows, cols int // As reported by Dimensions
	width      int // Columns of the frame buffer
	cells      []cell

	seqs    map[int]string
	started bool
	buf     bytes.Buffer
	badCell error
}

// New creates a terminal writing to f.
func New(f *os.File, opts Options) *Terminal {
	colors := opts.Colors
	if colors == 0 {
		colors = DetectColors(os.Getenv)
	}
	return newTerminal(f, int(f.Fd()), colors)
}

func newTerminal(out io.Writer, fd, colors int) *Terminal {
	return &Terminal{
		out:    out,
		fd:     fd,
		colors: colors,
	}
}

// Colors returns the number of colours the terminal is assumed to support.
func (t *Terminal) Colors() int {
	return t.colors
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectColors estimates the colour support from TERM and COLORTERM.
func DetectColors(getenv func(string) string) int {
	termName := getenv("TERM")
	switch {
	case termName == "dumb":
		return 0
	case getenv("COLORTERM") != "",
		strings.Contains(termName, "256color"),
		strings.Contains(termName, "direct"):
		return colors256
	default:
		return 8
	}
}

// Dimensions returns the terminal size in cells.
func (t *Terminal) Dimensions() (rows, cols int, err error) {
	if !isatty.IsTerminal(uintptr(t.fd)) && !isatty.IsCygwinTerminal(uintptr(t.fd)) {
		return 0, 0, ErrNotTerminal
	}
	width, height, err := term.GetSize(t.fd)
	if err != nil {
		return 0, 0, fmt.Errorf("get terminal size: %w", err)
	}
	t.rows, t.cols = height, width
	return height, width, nil
}

// Resized reports the current size when it differs from the one returned
// by Dimensions.
func (t *Terminal) Resized() (rows, cols int, changed bool) {
	if t.rows == 0 {
		return 0, 0, false
	}
	width, height, err := term.GetSize(t.fd)
	if err != nil {
		return 0, 0, false
	}
	return height, width, height != t.rows || width != t.cols
}

// RegisterPalette builds the escape sequences for every registered index.
func (t *Terminal) RegisterPalette(m ports.PaletteMapping) error {
	if t.seqs != nil {
		return ErrPaletteRegistered
	}

	var need int
	switch m.Mode {
	case ports.PaletteCube:
		need = 256
	case ports.PaletteBase8:
		need = 8
	case ports.PaletteMono:
		need = 0
	default:
		return fmt.Errorf("%w: mode %q", ErrUnsupportedColors, m.Mode)
	}
	if t.colors < need {
		return fmt.Errorf("%w: %s needs %d colours, terminal has %d", ErrUnsupportedColors, m.Mode, need, t.colors)
	}

	seqs := make(map[int]string, len(m.Entries))
	for _, e := range m.Entries {
		if e.Index < 0 || e.Index >= max(need, 1) {
			return fmt.Errorf("%w: index %d out of range for %s", ErrUnsupportedColors, e.Index, m.Mode)
		}
		switch m.Mode {
		case ports.PaletteCube:
			seqs[e.Index] = fmt.Sprintf("\x1b[38;5;%dm", e.Index)
		case ports.PaletteBase8:
			seqs[e.Index] = fmt.Sprintf("\x1b[3%dm", e.Index)
		default:
			seqs[e.Index] = ""
		}
	}
	t.seqs = seqs
	return nil
}

// SetCell stores a cell of the pending frame. The buffer grows on the first
// frame to the largest position written.
func (t *Terminal) SetCell(row, col int, glyph rune, colorIndex int) {
	if _, ok := t.seqs[colorIndex]; !ok && t.badCell == nil {
		t.badCell = fmt.Errorf("%w: %d", ErrUnknownColor, colorIndex)
	}
	if col >= t.width || row*t.width+col >= len(t.cells) {
		t.grow(row+1, col+1)
	}
	t.cells[row*t.width+col] = cell{glyph: glyph, color: colorIndex}
}

func (t *Terminal) grow(rows, cols int) {
	curRows := 0
	if t.width > 0 {
		curRows = len(t.cells) / t.width
	}
	rows = max(rows, curRows)
	cols = max(cols, t.width)
	cells := make([]cell, rows*cols)
	for r := 0; r < curRows; r++ {
		copy(cells[r*cols:], t.cells[r*t.width:(r+1)*t.width])
	}
	t.cells = cells
	t.width = cols
}

// Flush writes the pending frame in a single write.
func (t *Terminal) Flush() error {
	if t.seqs == nil {
		return ErrNoPalette
	}
	if t.badCell != nil {
		err := t.badCell
		t.badCell = nil
		return err
	}

	t.buf.Reset()
	if !t.started {
		t.buf.WriteString(escEnterAlt + escHideCursor + escClear)
		t.started = true
	}
	t.buf.WriteString(escHome)

	rows := 0
	if t.width > 0 {
		rows = len(t.cells) / t.width
	}
	var tmp [utf8.UTFMax]byte
	for r := 0; r < rows; r++ {
		last := noColor
		for c := 0; c < t.width; c++ {
			cl := t.cells[r*t.width+c]
			if cl.color != last {
				t.buf.WriteString(t.seqs[cl.color])
				last = cl.color
			}
			g := cl.glyph
			if g == 0 {
				g = ' '
			}
			n := utf8.EncodeRune(tmp[:], g)
			t.buf.Write(tmp[:n])
		}
		if r < rows-1 {
			t.buf.WriteString("\r\n")
		}
	}
	t.buf.WriteString(escReset)

	if _, err := t.out.Write(t.buf.Bytes()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close restores the primary screen and the cursor.
func (t *Terminal) Close() error {
	if !t.started {
		return nil
	}
	t.started = false
	if _, err := io.WriteString(t.out, escReset+escShowCursor+escExitAlt); err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	return nil
}

var (
	_ ports.Display       = (*Terminal)(nil)
	_ ports.ResizeWatcher = (*Terminal)(nil)
)
