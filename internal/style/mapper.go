package style

import (
	"fmt"
	"strconv"
	"strings"
)

// SGR base codes.
const (
	BaseForeground = 30
	BaseBackground = 40
)

// Attribute codes, emitted after the color codes in this order.
const (
	codeBold      = 1
	codeItalic    = 3
	codeUnderline = 4
	codeReverse   = 7
)

// cubeLevels are the channel values of the xterm 6x6x6 color cube.
var cubeLevels = [6]int{0, 95, 135, 175, 215, 255}

// Mapper converts styles into SGR codes.
type Mapper struct {
	nearest [256]uint8
}

// NewMapper builds the nearest-level lookup table.
// For a value equidistant from two levels the lower level wins.
func NewMapper() *Mapper {
	m := &Mapper{}
	for v := 0; v < 256; v++ {
		best := 0
		bestDist := abs(v - cubeLevels[0])
		for i := 1; i < len(cubeLevels); i++ {
			if d := abs(v - cubeLevels[i]); d < bestDist {
				best, bestDist = i, d
			}
		}
		m.nearest[v] = uint8(best)
	}
	return m
}

// Shared is the process-wide mapper. It is read-only after package init.
var Shared = NewMapper()

// CubeLevel returns the cube index (0-5) nearest to v.
func (m *Mapper) CubeLevel(v uint8) uint8 {
	return m.nearest[v]
}

// CubeIndex returns the 256-palette index of the cube point nearest to the
// given RGB triple.
func (m *Mapper) CubeIndex(r, g, b uint8) int {
	return int(m.nearest[r])*36 + int(m.nearest[g])*6 + int(m.nearest[b]) + 16
}

// ColorCodes returns the SGR codes selecting c relative to base
// (BaseForeground or BaseBackground).
func (m *Mapper) ColorCodes(c Color, base int) ([]int, error) {
	switch c.Kind {
	case KindDefault:
		return []int{base + 9}, nil
	case KindIndexed:
		switch {
		case c.Index < 8:
			return []int{base + int(c.Index)}, nil
		case c.Index < 16:
			return []int{base + 60 + int(c.Index) - 8}, nil
		default:
			return []int{base + 8, 5, int(c.Index)}, nil
		}
	case KindRGB:
		return []int{base + 8, 5, m.CubeIndex(c.R, c.G, c.B)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedColor, c)
	}
}

// Codes returns the full code list for s: foreground codes, background
// codes, then attribute codes.
func (m *Mapper) Codes(s Style) ([]int, error) {
	fg, err := m.ColorCodes(s.Fg, BaseForeground)
	if err != nil {
		return nil, fmt.Errorf("foreground: %w", err)
	}
	bg, err := m.ColorCodes(s.Bg, BaseBackground)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	codes := make([]int, 0, len(fg)+len(bg)+4)
	codes = append(codes, fg...)
	codes = append(codes, bg...)
	if s.Bold {
		codes = append(codes, codeBold)
	}
	if s.Italic {
		codes = append(codes, codeItalic)
	}
	if s.Underline {
		codes = append(codes, codeUnderline)
	}
	if s.Reverse {
		codes = append(codes, codeReverse)
	}
	return codes, nil
}

// SGR returns the escape sequence that selects s.
func (m *Mapper) SGR(s Style) (string, error) {
	codes, err := m.Codes(s)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("\x1b[")
	for i, c := range codes {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.Itoa(c))
	}
	b.WriteByte('m')
	return b.String(), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
