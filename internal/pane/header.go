package pane

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/vtmux/internal/render"
	"github.com/dshills/vtmux/internal/style"
)

// Theme holds the header styles.
type Theme struct {
	Active   style.Style
	Inactive style.Style
}

// DefaultTheme is black on white bold for the active pane and light gray
// on dark gray for the rest.
func DefaultTheme() Theme {
	return Theme{
		Active:   style.Style{Fg: style.Indexed(0), Bg: style.Indexed(7), Bold: true},
		Inactive: style.Style{Fg: style.Indexed(7), Bg: style.Indexed(8)},
	}
}

// HeaderText returns the unpadded header label.
func (p *Pane) HeaderText() string {
	return fmt.Sprintf(" %d: %dx%d %s", p.id, p.cols, p.rows, p.command)
}

// headerWidth is the number of columns of the pane's span that fall inside
// a window winCols wide.
func (p *Pane) headerWidth(winCols int) int {
	return min(p.left+p.cols, winCols) - p.left
}

// appendHeader draws the header on the first window row. Nothing is
// appended when the pane starts right of the window.
func (p *Pane) appendHeader(b []byte, winCols int) ([]byte, error) {
	width := p.headerWidth(winCols)
	if width <= 0 {
		return b, nil
	}

	theme := p.theme.Load()
	s := theme.Inactive
	if p.active.Load() {
		s = theme.Active
	}
	seq, err := p.mapper.SGR(s)
	if err != nil {
		return b, fmt.Errorf("header style: %w", err)
	}

	text := runewidth.FillRight(runewidth.Truncate(p.HeaderText(), width, ""), width)

	b = render.AppendCursorPos(b, 1, p.left+1)
	b = append(b, seq...)
	b = append(b, text...)
	return append(b, render.Reset()...), nil
}
