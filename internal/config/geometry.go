package config

import (
	"fmt"
	"regexp"
	"strconv"
)

var geometryPattern = regexp.MustCompile(`^(\d+)x(\d+)$`)

// Geometry is a pane size in cells.
type Geometry struct {
	Cols, Rows int
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Cols, g.Rows)
}

// ParseGeometry parses "WxH", for example "80x24".
func ParseGeometry(s string) (Geometry, error) {
	m := geometryPattern.FindStringSubmatch(s)
	if m == nil {
		return Geometry{}, fmt.Errorf("%w: %q (want WxH, e.g. 80x24)", ErrMalformedGeometry, s)
	}
	cols, err := strconv.Atoi(m[1])
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: %q: %v", ErrMalformedGeometry, s, err)
	}
	rows, err := strconv.Atoi(m[2])
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: %q: %v", ErrMalformedGeometry, s, err)
	}
	if cols < 1 || rows < 1 || cols > 0xffff || rows > 0xffff {
		return Geometry{}, fmt.Errorf("%w: %q: dimensions must be between 1 and 65535", ErrMalformedGeometry, s)
	}
	return Geometry{Cols: cols, Rows: rows}, nil
}

// Slot is where one pane sits in the window.
type Slot struct {
	Rows, Cols int
	// Left is the number of window columns left of the pane.
	Left int
}

// Layout places n panes side by side with one separator column between
// neighbours. With fixed nil the window width is split evenly and every
// pane gets the window height minus headerRows. Otherwise every pane has
// the fixed size. Sizes are at least 1.
func Layout(n, winRows, winCols, headerRows int, fixed *Geometry) []Slot {
	if n < 1 {
		return nil
	}
	var rows, cols int
	if fixed != nil {
		rows, cols = fixed.Rows, fixed.Cols
	} else {
		rows = max(winRows-headerRows, 1)
		cols = max((winCols-(n-1))/n, 1)
	}
	slots := make([]Slot, n)
	for i := range slots {
		slots[i] = Slot{Rows: rows, Cols: cols, Left: i * (cols + 1)}
	}
	return slots
}
