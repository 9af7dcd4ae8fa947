package style

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorKind discriminates the Color union.
// The zero value is not a valid kind.
type ColorKind uint8

const (
	// KindDefault is the terminal's own default foreground or background.
	KindDefault ColorKind = iota + 1
	// KindIndexed is a palette color 0-255.
	KindIndexed
	// KindRGB is a 24-bit color.
	KindRGB
)

// Color is a cell color.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// Default returns the terminal default color.
func Default() Color {
	return Color{Kind: KindDefault}
}

// Indexed returns a palette color.
func Indexed(i uint8) Color {
	return Color{Kind: KindIndexed, Index: i}
}

// RGB returns a 24-bit color.
func RGB(r, g, b uint8) Color {
	return Color{Kind: KindRGB, R: r, G: g, B: b}
}

// Valid reports whether c is one of the recognized representations.
func (c Color) Valid() bool {
	switch c.Kind {
	case KindDefault, KindIndexed, KindRGB:
		return true
	}
	return false
}

// String returns a short description of the color.
func (c Color) String() string {
	switch c.Kind {
	case KindDefault:
		return "default"
	case KindIndexed:
		return "index(" + strconv.Itoa(int(c.Index)) + ")"
	case KindRGB:
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	default:
		return fmt.Sprintf("invalid(%d)", c.Kind)
	}
}

// ParseColor parses a configuration color value.
// Accepted forms: "default", a palette index "0".."255", or a hex
// triple "#rrggbb" / "#rgb" (the leading '#' is optional).
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "default") {
		return Default(), nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 255 {
			return Color{}, fmt.Errorf("palette index %d out of range: %w", n, ErrUnsupportedColor)
		}
		return Indexed(uint8(n)), nil
	}
	return ParseHex(s)
}

// ParseHex parses a hex color into an RGB Color.
func ParseHex(s string) (Color, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, ErrUnsupportedColor)
	}
	r, g, b := c.RGB255()
	return RGB(r, g, b), nil
}
