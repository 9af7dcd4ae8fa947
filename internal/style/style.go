package style

// Style is the visual style of a cell. Equality is structural.
type Style struct {
	Fg, Bg    Color
	Bold      bool
	Italic    bool
	Underline bool
	Reverse   bool
}

// Plain returns the style with default colors and no attributes.
func Plain() Style {
	return Style{Fg: Default(), Bg: Default()}
}

// Valid reports whether both colors are recognized representations.
func (s Style) Valid() bool {
	return s.Fg.Valid() && s.Bg.Valid()
}
