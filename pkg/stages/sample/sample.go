// Package sample implements the frame sampling stage.
//
// A frame of width W and height H is reduced to a rows x cols grid by block
// averaging. Each cell covers a blockW x blockH luma block with
// blockW = max(1, W/cols) and blockH = max(1, H/rows). When W or H is not a
// multiple of the grid size, the residual strip at the right and bottom edges
// (narrower than one block) is not sampled. When the source is smaller than the
// grid, cells past the last source row or column repeat the edge samples.
package sample

import (
	"errors"
	"fmt"

	"github.com/user/asciiplay/pkg/pipeline"
	"github.com/user/asciiplay/pkg/ports"
)

var (
	// ErrEmptyFrame is returned for frames without pixels.
	ErrEmptyFrame = errors.New("sample: empty frame")

	// ErrShortPlane is returned when a plane is smaller than its stride and height imply.
	ErrShortPlane = errors.New("sample: plane shorter than frame geometry")
)

// Block is the source rectangle reduced into one cell, in luma coordinates.
type Block struct {
	X0, Y0 int
	X1, Y1 int // Exclusive
}

// BlockSize returns the luma block dimensions for a frame and grid.
func BlockSize(width, height, rows, cols int) (blockW, blockH int) {
	blockW = width / cols
	if blockW < 1 {
		blockW = 1
	}
	blockH = height / rows
	if blockH < 1 {
		blockH = 1
	}
	return blockW, blockH
}

// CellBlock returns the luma block covered by the cell at row, col.
// The block is always inside the frame.
func CellBlock(width, height, rows, cols, row, col int) Block {
	bw, bh := BlockSize(width, height, rows, cols)
	x0 := min(col*bw, width-1)
	y0 := min(row*bh, height-1)
	return Block{
		X0: x0,
		Y0: y0,
		X1: min(x0+bw, width),
		Y1: min(y0+bh, height),
	}
}

// Frame fills grid with the block averages of frame.
// It is a pure function of the frame contents and grid dimensions.
func Frame(frame *ports.Frame, grid *pipeline.Grid) error {
	if err := checkGeometry(frame); err != nil {
		return err
	}
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			b := CellBlock(frame.Width, frame.Height, grid.Rows, grid.Cols, row, col)
			grid.Cells[row*grid.Cols+col] = reduce(frame, b)
		}
	}
	return nil
}

// reduce averages one block. Luma is divided by the number of luma samples;
// chroma is read at every second luma row and column and divided by the
// number of chroma samples actually read.
func reduce(f *ports.Frame, b Block) pipeline.Cell {
	var ySum, yCount int
	for y := b.Y0; y < b.Y1; y++ {
		row := f.Y[y*f.YStride:]
		for x := b.X0; x < b.X1; x++ {
			ySum += int(row[x])
		}
		yCount += b.X1 - b.X0
	}

	cw, ch := f.ChromaSize()
	var uSum, vSum, cCount int
	for y := b.Y0; y < b.Y1; y += 2 {
		cy := min(y/2, ch-1)
		uRow := f.U[cy*f.UStride:]
		vRow := f.V[cy*f.VStride:]
		for x := b.X0; x < b.X1; x += 2 {
			cx := min(x/2, cw-1)
			uSum += int(uRow[cx])
			vSum += int(vRow[cx])
			cCount++
		}
	}

	return pipeline.Cell{
		Y: uint8(ySum / yCount),
		U: uint8(uSum / cCount),
		V: uint8(vSum / cCount),
	}
}

func checkGeometry(f *ports.Frame) error {
	if f.Width <= 0 || f.Height <= 0 {
		return ErrEmptyFrame
	}
	cw, ch := f.ChromaSize()
	if err := checkPlane("Y", f.Y, f.YStride, f.Width, f.Height); err != nil {
		return err
	}
	if err := checkPlane("U", f.U, f.UStride, cw, ch); err != nil {
		return err
	}
	return checkPlane("V", f.V, f.VStride, cw, ch)
}

func checkPlane(name string, plane []byte, stride, width, height int) error {
	if stride < width || len(plane) < (height-1)*stride+width {
		return fmt.Errorf("%w: %s plane %d bytes, stride %d, %dx%d",
			ErrShortPlane, name, len(plane), stride, width, height)
	}
	return nil
}
