package render

import (
	"github.com/dshills/vtmux/internal/grid"
	"github.com/dshills/vtmux/internal/style"
)

// Renderer diffs each new grid against the last one it rendered.
// It is not safe for concurrent use; a pane's scheduler owns it.
type Renderer struct {
	rows, cols int
	at         Placement
	styles     *StyleCache
	prev       *grid.Grid
}

// New returns a renderer for a rows x cols pane placed at at. The first
// frame is a full redraw.
func New(rows, cols int, at Placement, m *style.Mapper) *Renderer {
	return &Renderer{
		rows:   rows,
		cols:   cols,
		at:     at,
		styles: NewStyleCache(m),
		prev:   grid.New(rows, cols),
	}
}

// Invalidate forgets the cached grid so the next Render redraws every
// visible cell.
func (r *Renderer) Invalidate() {
	r.prev = grid.New(r.rows, r.cols)
}

// Render returns the update that turns the displayed grid into next.
// next becomes the cached grid even when the frame is a full redraw. A
// frame with no cell changes is empty.
func (r *Renderer) Render(next *grid.Grid, vis Viewport) ([]byte, error) {
	out, err := Diff(nil, r.prev, next, vis, r.at, r.styles)
	if err != nil {
		return nil, err
	}
	r.prev = next
	return out, nil
}

// CursorAt converts a pane cursor into a 1-based window position,
// clamped to the visible part of the pane. ok is false when none of the
// pane is visible.
func (r *Renderer) CursorAt(cursor grid.CursorPos, vis Viewport) (pos grid.CursorPos, ok bool) {
	rows := min(r.rows, vis.Rows)
	cols := min(r.cols, vis.Cols)
	if rows < 1 || cols < 1 {
		return grid.CursorPos{}, false
	}
	c := cursor.Clamp(rows, cols)
	return grid.CursorPos{Row: c.Row + r.at.Top, Col: c.Col + r.at.Left}, true
}
