package config

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		input string
		want  Geometry
		ok    bool
	}{
		{"80x24", Geometry{Cols: 80, Rows: 24}, true},
		{"1x1", Geometry{Cols: 1, Rows: 1}, true},
		{"80-24", Geometry{}, false},
		{"x24", Geometry{}, false},
		{"80x", Geometry{}, false},
		{"0x24", Geometry{}, false},
		{"80x24 ", Geometry{}, false},
		{"-80x24", Geometry{}, false},
		{"70000x24", Geometry{}, false},
		{"", Geometry{}, false},
	}

	for _, tt := range tests {
		got, err := ParseGeometry(tt.input)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("ParseGeometry(%q) = %+v, %v", tt.input, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrMalformedGeometry) {
			t.Errorf("ParseGeometry(%q) error = %v, want ErrMalformedGeometry", tt.input, err)
		}
	}
}

func TestGeometryString(t *testing.T) {
	if s := (Geometry{Cols: 80, Rows: 24}).String(); s != "80x24" {
		t.Errorf("String() = %q", s)
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		winRows int
		winCols int
		fixed   *Geometry
		want    []Slot
	}{
		{
			name: "single pane fills window",
			n:    1, winRows: 24, winCols: 80,
			want: []Slot{{Rows: 23, Cols: 80, Left: 0}},
		},
		{
			name: "even split with separators",
			n:    3, winRows: 24, winCols: 80,
			want: []Slot{
				{Rows: 23, Cols: 26, Left: 0},
				{Rows: 23, Cols: 26, Left: 27},
				{Rows: 23, Cols: 26, Left: 54},
			},
		},
		{
			name: "fixed geometry",
			n:    2, winRows: 10, winCols: 20,
			fixed: &Geometry{Cols: 80, Rows: 24},
			want: []Slot{
				{Rows: 24, Cols: 80, Left: 0},
				{Rows: 24, Cols: 80, Left: 81},
			},
		},
		{
			name: "tiny window keeps panes non-empty",
			n:    4, winRows: 1, winCols: 2,
			want: []Slot{
				{Rows: 1, Cols: 1, Left: 0},
				{Rows: 1, Cols: 1, Left: 2},
				{Rows: 1, Cols: 1, Left: 4},
				{Rows: 1, Cols: 1, Left: 6},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Layout(tt.n, tt.winRows, tt.winCols, 1, tt.fixed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Layout() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if Layout(0, 24, 80, 1, nil) != nil {
		t.Error("Layout(0) should be nil")
	}
}
