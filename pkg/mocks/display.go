package mocks

import (
	"errors"
	"sync"

	"github.com/user/asciiplay/pkg/ports"
)

// ErrPaletteRegistered is returned by Display on a second RegisterPalette call.
var ErrPaletteRegistered = errors.New("mocks: palette already registered")

// ErrNoPalette is returned by Display.Flush before a palette was registered.
var ErrNoPalette = errors.New("mocks: no palette registered")

// Cell is one recorded SetCell call.
type Cell struct {
	Glyph rune
	Color int
}

// Display is a mock implementation of ports.Display.
// Every Flush snapshots the pending cells into Frames.
type Display struct {
	mu sync.Mutex

	Rows, Cols int

	DimensionsFunc      func() (int, int, error)
	RegisterPaletteFunc func(m ports.PaletteMapping) error
	FlushFunc           func() error

	// Recorded calls for verification
	Palettes     []ports.PaletteMapping
	SetCellCalls int
	Frames       [][]Cell
	Closed       bool

	// Resize simulation
	ResizedRows, ResizedCols int
	ResizeAfter              int // Report a size change from this flush count on (0 = never)

	pending []Cell
}

// NewDisplay creates a mock display of rows x cols.
func NewDisplay(rows, cols int) *Display {
	return &Display{Rows: rows, Cols: cols}
}

func (m *Display) Dimensions() (int, int, error) {
	if m.DimensionsFunc != nil {
		return m.DimensionsFunc()
	}
	return m.Rows, m.Cols, nil
}

func (m *Display) RegisterPalette(p ports.PaletteMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RegisterPaletteFunc != nil {
		if err := m.RegisterPaletteFunc(p); err != nil {
			return err
		}
	}
	if len(m.Palettes) > 0 {
		return ErrPaletteRegistered
	}
	m.Palettes = append(m.Palettes, p)
	return nil
}

func (m *Display) SetCell(row, col int, glyph rune, colorIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCellCalls++
	if m.pending == nil {
		m.pending = make([]Cell, m.Rows*m.Cols)
	}
	if row < 0 || row >= m.Rows || col < 0 || col >= m.Cols {
		return
	}
	m.pending[row*m.Cols+col] = Cell{Glyph: glyph, Color: colorIndex}
}

func (m *Display) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FlushFunc != nil {
		if err := m.FlushFunc(); err != nil {
			return err
		}
	}
	if len(m.Palettes) == 0 {
		return ErrNoPalette
	}
	frame := make([]Cell, len(m.pending))
	copy(frame, m.pending)
	m.Frames = append(m.Frames, frame)
	return nil
}

func (m *Display) Close() error {
	m.Closed = true
	return nil
}

// Resized reports ResizedRows x ResizedCols once ResizeAfter frames were flushed.
func (m *Display) Resized() (int, int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ResizeAfter == 0 || len(m.Frames) < m.ResizeAfter {
		return 0, 0, false
	}
	return m.ResizedRows, m.ResizedCols, true
}

// FrameCount returns the number of flushed frames.
func (m *Display) FrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Frames)
}

// Glyphs returns row r of flushed frame i as a string.
func (m *Display) Glyphs(i, r int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.Frames[i][r*m.Cols : (r+1)*m.Cols]
	glyphs := make([]rune, len(row))
	for c, cell := range row {
		glyphs[c] = cell.Glyph
	}
	return string(glyphs)
}

var (
	_ ports.Display       = (*Display)(nil)
	_ ports.ResizeWatcher = (*Display)(nil)
)
