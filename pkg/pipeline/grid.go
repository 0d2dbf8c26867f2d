package pipeline

import "fmt"

// Cell is the averaged colour sample of one grid position.
type Cell struct {
	Y uint8
	U uint8
	V uint8
}

// Grid is the rows x cols cell buffer. It is allocated once per session and
// overwritten in place for every frame.
type Grid struct {
	Rows  int
	Cols  int
	Cells []Cell // Row-major, len == Rows*Cols
}

// NewGrid allocates a grid of the given size.
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", rows, cols)
	}
	return &Grid{
		Rows:  rows,
		Cols:  cols,
		Cells: make([]Cell, rows*cols),
	}, nil
}

// At returns the cell at row, col.
func (g *Grid) At(row, col int) Cell {
	return g.Cells[row*g.Cols+col]
}
