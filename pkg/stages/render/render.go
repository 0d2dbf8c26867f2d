// Package render implements the rendering stage: one decoded frame in,
// one complete flushed grid out.
package render

import (
	"context"
	"fmt"

	"github.com/user/asciiplay/pkg/pipeline"
	"github.com/user/asciiplay/pkg/ports"
	"github.com/user/asciiplay/pkg/stages/colormap"
	"github.com/user/asciiplay/pkg/stages/glyph"
	"github.com/user/asciiplay/pkg/stages/sample"
)

// Result describes one rendered frame.
type Result struct {
	Cells int
	PTS   int64 // Presentation time in milliseconds
}

// Stage samples a frame into its grid, maps every cell to a glyph and colour
// and flushes the display once.
type Stage struct {
	grid    *pipeline.Grid
	mapper  *colormap.Mapper
	ramp    *glyph.Ramp
	display ports.Display
}

// NewStage creates a render stage writing to display through grid.
func NewStage(grid *pipeline.Grid, mapper *colormap.Mapper, ramp *glyph.Ramp, display ports.Display) *Stage {
	return &Stage{
		grid:    grid,
		mapper:  mapper,
		ramp:    ramp,
		display: display,
	}
}

// Grid returns the cell buffer the stage renders through.
func (s *Stage) Grid() *pipeline.Grid {
	return s.grid
}

// Execute renders one frame. Nothing is flushed unless every cell was computed.
func (s *Stage) Execute(ctx context.Context, frame *ports.Frame) (Result, error) {
	if err := sample.Frame(frame, s.grid); err != nil {
		return Result{}, fmt.Errorf("sample frame: %w", err)
	}

	for row := 0; row < s.grid.Rows; row++ {
		for col := 0; col < s.grid.Cols; col++ {
			c := s.grid.Cells[row*s.grid.Cols+col]
			s.display.SetCell(row, col, s.ramp.Select(c.Y), s.mapper.Index(c.Y, c.U, c.V))
		}
	}

	if err := s.display.Flush(); err != nil {
		return Result{}, fmt.Errorf("flush: %w", err)
	}

	return Result{
		Cells: len(s.grid.Cells),
		PTS:   frame.PTS.Milliseconds(),
	}, nil
}

var _ pipeline.Stage[*ports.Frame, Result] = (*Stage)(nil)
