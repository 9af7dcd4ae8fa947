package pane

import (
	"sync"

	"github.com/dshills/vtmux/internal/grid"
	"github.com/dshills/vtmux/internal/render"
)

// Cursor is the physical cursor every pane on one screen shares. Only an
// active pane moves it; every submitted frame ends by returning the
// cursor to where the active pane left it.
type Cursor struct {
	mu      sync.Mutex
	parked  bool
	pos     grid.CursorPos
	visible bool
}

// NewCursor returns a cursor that no pane has placed yet. Frames submitted
// before the first Park leave the physical cursor where they end.
func NewCursor() *Cursor {
	return &Cursor{}
}

// Park records the active pane's 1-based window position and whether its
// cursor is shown. It reports whether either changed.
func (c *Cursor) Park(pos grid.CursorPos, visible bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.parked && c.pos == pos && c.visible == visible {
		return false
	}
	c.parked, c.pos, c.visible = true, pos, visible
	return true
}

// Hide keeps the parked position but hides the cursor. It reports whether
// that changed anything.
func (c *Cursor) Hide() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.parked && !c.visible {
		return false
	}
	c.parked, c.visible = true, false
	return true
}

// Submit appends the return to the parked position and hands the frame to
// out. The lock is held across the hand-off so frames reach out in the
// order their cursor positions were read.
func (c *Cursor) Submit(out Output, frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.parked {
		if c.pos.Row > 0 {
			frame = render.AppendCursorPos(frame, c.pos.Row, c.pos.Col)
		}
		frame = render.AppendCursorVisible(frame, c.visible)
	}
	return out.Submit(frame)
}
