package render

import (
	"fmt"

	"github.com/dshills/vtmux/internal/grid"
	"github.com/dshills/vtmux/internal/style"
)

// Viewport is the part of the physical window available to a pane's
// content, measured from the pane's placement.
type Viewport struct {
	Rows, Cols int
}

// Placement locates a pane's content on the physical window.
// Top is the number of rows above the content (the header height) and
// Left the number of columns left of it.
type Placement struct {
	Top, Left int
}

// StyleCache memoizes SGR prologues.
type StyleCache struct {
	mapper *style.Mapper
	seqs   map[style.Style]string
}

const maxCachedStyles = 1024

// NewStyleCache returns a cache backed by m.
func NewStyleCache(m *style.Mapper) *StyleCache {
	return &StyleCache{mapper: m, seqs: make(map[style.Style]string)}
}

// SGR returns the escape sequence selecting s.
func (c *StyleCache) SGR(s style.Style) (string, error) {
	if seq, ok := c.seqs[s]; ok {
		return seq, nil
	}
	seq, err := c.mapper.SGR(s)
	if err != nil {
		return "", err
	}
	if len(c.seqs) >= maxCachedStyles {
		clear(c.seqs)
	}
	c.seqs[s] = seq
	return seq, nil
}

// Diff appends to b the sequence that turns a display showing prev into one
// showing next, within vis. Both grids must have the same size. Identical
// grids produce no output.
func Diff(b []byte, prev, next *grid.Grid, vis Viewport, at Placement, styles *StyleCache) ([]byte, error) {
	if !prev.SameSize(next) {
		return b, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch,
			prev.Rows(), prev.Cols(), next.Rows(), next.Cols())
	}
	rows := min(next.Rows(), vis.Rows)
	cols := min(next.Cols(), vis.Cols)
	if rows <= 0 || cols <= 0 {
		return b, nil
	}

	var err error
	for row := 0; row < rows; row++ {
		if prev.RowEqual(next, row, cols) {
			continue
		}
		b = AppendCursorPos(b, row+at.Top+1, at.Left+1)
		b, err = diffRow(b, prev.Row(row), next.Row(row), cols, styles)
		if err != nil {
			return b, fmt.Errorf("row %d: %w", row, err)
		}
	}
	return b, nil
}

// dirtyColumns marks the first n columns that differ, widened so a
// double-width grapheme is always redrawn whole: a terminal that gets
// half of one overwritten blanks the other half.
func dirtyColumns(before, after []grid.Cell, n int) []bool {
	dirty := make([]bool, n)
	for i := 0; i < n; i++ {
		dirty[i] = before[i] != after[i]
	}
	for again := true; again; {
		again = false
		for i := 0; i < n; i++ {
			if !dirty[i] {
				continue
			}
			if i > 0 && !dirty[i-1] && (before[i].Continuation || after[i].Continuation) {
				dirty[i-1], again = true, true
			}
			if i+1 < n && !dirty[i+1] && (before[i+1].Continuation || after[i+1].Continuation) {
				dirty[i+1], again = true, true
			}
		}
	}
	return dirty
}

// diffRow encodes the first n cells of one dirty row as alternating skip
// and styled runs. A trailing skip run is dropped since nothing follows
// it. Skip lengths count columns, so a wide lead accounts for its
// continuation cell, which emits nothing.
func diffRow(b []byte, before, after []grid.Cell, n int, styles *StyleCache) ([]byte, error) {
	dirty := dirtyColumns(before, after, n)
	for i := 0; i < n; {
		j := i + 1
		if !dirty[i] {
			for j < n && !dirty[j] {
				j++
			}
			if j < n {
				b = AppendCursorForward(b, j-i)
			}
			i = j
			continue
		}

		s := after[i].Style
		for j < n && dirty[j] && after[j].Style == s {
			j++
		}
		seq, err := styles.SGR(s)
		if err != nil {
			return b, err
		}
		b = append(b, seq...)
		for k := i; k < j; k++ {
			b = appendCellText(b, after, k, n)
		}
		b = append(b, seqReset...)
		i = j
	}
	return b, nil
}

// appendCellText writes cell k of row. A continuation following its lead
// writes nothing. A wide lead whose right half falls outside the n
// visible columns is drawn as a space so it cannot spill.
func appendCellText(b []byte, row []grid.Cell, k, n int) []byte {
	c := row[k]
	switch {
	case c.Continuation && k > 0 && !row[k-1].Continuation:
		return b
	case c.Continuation, c.Text == "":
		return append(b, ' ')
	case k+1 == n && k+1 < len(row) && row[k+1].Continuation:
		return append(b, ' ')
	}
	return append(b, c.Text...)
}
