// Package bridge serializes all access to one emulation engine.
//
// The engine is not safe for concurrent use, and a cursor position
// request must not be interleaved with other writes, so every interaction
// happens under a single mutex.
package bridge

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/hinshun/vt10x"
	"github.com/rivo/uniseg"

	"github.com/dshills/vtmux/internal/grid"
	"github.com/dshills/vtmux/internal/logging"
	"github.com/dshills/vtmux/internal/style"
	"github.com/dshills/vtmux/internal/vterm"
)

var cursorReport = regexp.MustCompile(`\x1b\[(\d+);(\d+)R`)

// Engine is the emulation engine contract.
type Engine interface {
	// Write feeds bytes to the engine.
	Write(p []byte) (int, error)
	// Read drains bytes the engine wants sent back to the child.
	Read() []byte
	// Size returns the grid dimensions.
	Size() (rows, cols int)
	// Cell returns the glyph at a 0-based position.
	Cell(row, col int) vt10x.Glyph
	// CursorVisible reports whether the child shows its cursor.
	CursorVisible() bool
}

// State is one atomic capture of the engine.
type State struct {
	Grid *grid.Grid
	// Cursor is 1-based and not clamped.
	Cursor        grid.CursorPos
	CursorVisible bool
}

// Bridge owns one engine and forwards its replies to the child.
type Bridge struct {
	mu     sync.Mutex
	engine Engine
	child  io.Writer
	// lastReport is the last cursor the engine reported, in engine columns.
	lastReport grid.CursorPos
	log        *logging.Logger
}

// New returns a bridge writing engine replies to child. A nil logger
// discards.
func New(engine Engine, child io.Writer, log *logging.Logger) *Bridge {
	if log == nil {
		log = logging.Nop()
	}
	return &Bridge{
		engine:     engine,
		child:      child,
		lastReport: grid.CursorPos{Row: 1, Col: 1},
		log:        log,
	}
}

// Ingest feeds child output to the engine and forwards any replies it
// produced, such as answers to capability queries, back to the child.
func (b *Bridge) Ingest(p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.engine.Write(p); err != nil {
		return fmt.Errorf("engine write: %w", err)
	}
	return b.flushLocked()
}

func (b *Bridge) flushLocked() error {
	reply := b.engine.Read()
	if len(reply) == 0 {
		return nil
	}
	if _, err := b.child.Write(reply); err != nil {
		return fmt.Errorf("forward engine reply: %w", err)
	}
	return nil
}

// Snapshot captures the grid, the cursor and its visibility atomically.
// If the engine's cursor report is malformed the previous cursor is used.
func (b *Bridge) Snapshot() (State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Pending replies belong to the child, not to the request below.
	if err := b.flushLocked(); err != nil {
		return State{}, err
	}

	if _, err := b.engine.Write([]byte(vterm.CursorRequest)); err != nil {
		return State{}, fmt.Errorf("engine cursor request: %w", err)
	}
	report, err := parseCursorReport(b.engine.Read())
	if err != nil {
		b.log.Warn("%v; reusing cursor %d;%d", err, b.lastReport.Row, b.lastReport.Col)
		report = b.lastReport
	}
	b.lastReport = report

	rows, cols := b.engine.Size()
	g := grid.New(rows, cols)
	cursor := report
	glyphs := make([]vt10x.Glyph, cols)
	for r := range rows {
		for c := range cols {
			glyphs[c] = b.engine.Cell(r, c)
		}
		cells, at, err := layoutRow(glyphs, cols)
		if err != nil {
			return State{}, fmt.Errorf("row %d: %w", r, err)
		}
		for c, cell := range cells {
			g.Set(r, c, cell)
		}
		if r == report.Row-1 {
			cursor.Col = mapColumn(at, report.Col)
		}
	}
	return State{Grid: g, Cursor: cursor, CursorVisible: b.engine.CursorVisible()}, nil
}

// layoutRow turns one engine row into exactly cols grid cells. The engine
// keeps one rune per column: a wide grapheme becomes a lead cell plus a
// Continuation cell, and zero-width runes join the grapheme before them.
// A wide grapheme with no room left becomes a blank. at maps every engine
// column, and the one past the end, to the grid column it landed in.
func layoutRow(glyphs []vt10x.Glyph, cols int) (cells []grid.Cell, at []int, err error) {
	cells = make([]grid.Cell, 0, cols)
	at = make([]int, len(glyphs)+1)

	runes := make([]rune, len(glyphs))
	for i, gl := range glyphs {
		runes[i] = gl.Char
		if runes[i] == 0 || !utf8.ValidRune(runes[i]) {
			runes[i] = ' '
		}
	}

	rest, state, src := string(runes), -1, 0
	for len(rest) > 0 {
		var cluster string
		var width int
		cluster, rest, width, state = uniseg.FirstGraphemeClusterInString(rest, state)
		n := utf8.RuneCountInString(cluster)
		for k := range n {
			at[src+k] = len(cells)
		}

		head, err := convertCell(glyphs[src])
		if err != nil {
			return nil, nil, fmt.Errorf("col %d: %w", src, err)
		}
		src += n
		if cluster != " " {
			head.Text = cluster
		}

		width = min(max(width, 1), 2)
		switch free := cols - len(cells); {
		case free <= 0:
		case width > free:
			cells = append(cells, grid.Cell{Style: head.Style})
		case width == 2:
			cells = append(cells, head, grid.Cell{Style: head.Style, Continuation: true})
		default:
			cells = append(cells, head)
		}
	}
	at[len(glyphs)] = len(cells)

	for len(cells) < cols {
		cells = append(cells, grid.Blank())
	}
	return cells, at, nil
}

// mapColumn converts a 1-based engine column to a 1-based grid column.
func mapColumn(at []int, col int) int {
	src := col - 1
	switch last := len(at) - 1; {
	case src < 0:
		return col
	case src > last:
		return at[last] + src - last + 1
	default:
		return at[src] + 1
	}
}

func parseCursorReport(p []byte) (grid.CursorPos, error) {
	m := cursorReport.FindSubmatch(p)
	if m == nil {
		return grid.CursorPos{}, fmt.Errorf("%w: %q", ErrBadCursorReport, p)
	}
	row, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return grid.CursorPos{}, fmt.Errorf("%w: %v", ErrBadCursorReport, err)
	}
	col, err := strconv.Atoi(string(m[2]))
	if err != nil {
		return grid.CursorPos{}, fmt.Errorf("%w: %v", ErrBadCursorReport, err)
	}
	return grid.CursorPos{Row: row, Col: col}, nil
}

func convertCell(gl vt10x.Glyph) (grid.Cell, error) {
	fg, err := convertColor(gl.FG)
	if err != nil {
		return grid.Cell{}, err
	}
	bg, err := convertColor(gl.BG)
	if err != nil {
		return grid.Cell{}, err
	}
	var text string
	if gl.Char != 0 && gl.Char != ' ' {
		text = string(gl.Char)
	}
	return grid.Cell{
		Text: text,
		Style: style.Style{
			Fg:        fg,
			Bg:        bg,
			Bold:      gl.Mode&vterm.AttrBold != 0,
			Italic:    gl.Mode&vterm.AttrItalic != 0,
			Underline: gl.Mode&vterm.AttrUnderline != 0,
			Reverse:   gl.Mode&vterm.AttrReverse != 0,
		},
	}, nil
}

// convertColor maps the emulator's packed colors: values below 256 are
// palette indexes, values below 1<<24 are 0xRRGGBB.
func convertColor(c vt10x.Color) (style.Color, error) {
	switch {
	case c == vt10x.DefaultFG || c == vt10x.DefaultBG:
		return style.Default(), nil
	case c < 256:
		return style.Indexed(uint8(c)), nil
	case c < 1<<24:
		return style.RGB(uint8(c>>16), uint8(c>>8), uint8(c)), nil
	}
	return style.Color{}, fmt.Errorf("engine color %#x: %w", uint32(c), style.ErrUnsupportedColor)
}
