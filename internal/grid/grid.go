// Package grid holds the cell matrix captured from an emulation engine.
package grid

import "github.com/dshills/vtmux/internal/style"

// Cell is one character position. Text is one grapheme; empty Text
// renders as a space. A double-width grapheme occupies its lead cell and
// the Continuation cell to its right, which carries no text of its own.
type Cell struct {
	Text         string
	Style        style.Style
	Continuation bool
}

// Blank returns a space cell in the plain style.
func Blank() Cell {
	return Cell{Style: style.Plain()}
}

// Grid is a fixed rows x cols matrix of cells stored row-major.
// A Grid returned from a snapshot is never modified afterwards.
type Grid struct {
	rows, cols int
	cells      []Cell
}

// New returns a grid whose cells are all the zero Cell. The zero Cell has
// no valid style, so it differs from every cell an engine can produce;
// diffing against such a grid redraws everything.
func New(rows, cols int) *Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Grid{rows: rows, cols: cols, cells: make([]Cell, rows*cols)}
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// At returns the cell at (row, col), both 0-based.
func (g *Grid) At(row, col int) Cell {
	return g.cells[row*g.cols+col]
}

// Set stores c at (row, col). Only the producer of a grid calls Set.
func (g *Grid) Set(row, col int, c Cell) {
	g.cells[row*g.cols+col] = c
}

// Row returns the cells of one row. The slice aliases the grid.
func (g *Grid) Row(row int) []Cell {
	return g.cells[row*g.cols : (row+1)*g.cols]
}

// RowEqual reports whether the first n cells of row r are identical in g
// and other. n is limited to the narrower row.
func (g *Grid) RowEqual(other *Grid, r, n int) bool {
	a, b := g.Row(r), other.Row(r)
	n = min(n, len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SameSize reports whether the two grids have equal dimensions.
func (g *Grid) SameSize(other *Grid) bool {
	return g.rows == other.rows && g.cols == other.cols
}

// CursorPos is a 1-based cursor location.
type CursorPos struct {
	Row, Col int
}

// Clamp limits p to [1, rows] x [1, cols].
// The result is meaningless when rows or cols is below 1.
func (p CursorPos) Clamp(rows, cols int) CursorPos {
	p.Row = min(max(p.Row, 1), rows)
	p.Col = min(max(p.Col, 1), cols)
	return p
}
