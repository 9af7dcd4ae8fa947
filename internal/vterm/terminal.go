package vterm

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/hinshun/vt10x"
)

// CursorRequest is the cursor position request. Written on its own it is
// answered from the emulator's cursor instead of being parsed.
const CursorRequest = "\x1b[6n"

// Glyph mode bits, in the order vt10x assigns them.
const (
	AttrReverse int16 = 1 << iota
	AttrUnderline
	AttrBold
	AttrGfx
	AttrItalic
	AttrBlink
	AttrWrap
)

// Terminal is a fixed-size emulated terminal.
type Terminal struct {
	vt    vt10x.Terminal
	reply bytes.Buffer
}

// New returns a terminal with the given size. Sizes below one are raised
// to one.
func New(rows, cols int) *Terminal {
	t := &Terminal{}
	t.vt = vt10x.New(vt10x.WithSize(max(cols, 1), max(rows, 1)), vt10x.WithWriter(&t.reply))
	return t
}

// Write feeds child output into the emulator. Answers to queries the
// child made are queued for Read.
func (t *Terminal) Write(p []byte) (n int, err error) {
	if string(p) == CursorRequest {
		t.appendCursorReport()
		return len(p), nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEmulator, r)
		}
	}()
	return t.vt.Write(p)
}

// appendCursorReport queues "ESC [ row ; col R", both 1-based.
func (t *Terminal) appendCursorReport() {
	cur := t.vt.Cursor()
	b := t.reply.AvailableBuffer()
	b = append(b, "\x1b["...)
	b = strconv.AppendInt(b, int64(cur.Y+1), 10)
	b = append(b, ';')
	b = strconv.AppendInt(b, int64(cur.X+1), 10)
	b = append(b, 'R')
	t.reply.Write(b)
}

// Read drains the pending replies. It returns nil when there is nothing
// to send.
func (t *Terminal) Read() []byte {
	if t.reply.Len() == 0 {
		return nil
	}
	out := bytes.Clone(t.reply.Bytes())
	t.reply.Reset()
	return out
}

// Size returns the dimensions.
func (t *Terminal) Size() (rows, cols int) {
	cols, rows = t.vt.Size()
	return rows, cols
}

// Cell returns the glyph at (row, col), both 0-based.
func (t *Terminal) Cell(row, col int) vt10x.Glyph {
	return t.vt.Cell(col, row)
}

// CursorVisible reports whether the child currently shows the cursor.
func (t *Terminal) CursorVisible() bool {
	return t.vt.CursorVisible()
}
