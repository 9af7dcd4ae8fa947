package style

import (
	"errors"
	"reflect"
	"testing"
)

func TestCubeLevel(t *testing.T) {
	m := NewMapper()
	tests := []struct {
		v    uint8
		want uint8
	}{
		{0, 0},
		{47, 0},
		{48, 1},
		{95, 1},
		{115, 1}, // equidistant from 95 and 135
		{116, 2},
		{155, 2}, // equidistant from 135 and 175
		{195, 3}, // equidistant from 175 and 215
		{235, 4}, // equidistant from 215 and 255
		{236, 5},
		{255, 5},
	}
	for _, tt := range tests {
		if got := m.CubeLevel(tt.v); got != tt.want {
			t.Errorf("CubeLevel(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestCubeIndex(t *testing.T) {
	m := NewMapper()
	tests := []struct {
		r, g, b uint8
		want    int
	}{
		{0, 0, 0, 16},
		{255, 255, 255, 231},
		{255, 0, 0, 196},
		{0, 255, 0, 46},
		{0, 0, 255, 21},
		{100, 140, 250, 16 + 1*36 + 2*6 + 5},
	}
	for _, tt := range tests {
		if got := m.CubeIndex(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("CubeIndex(%d,%d,%d) = %d, want %d", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestCubeIndexDeterministic(t *testing.T) {
	m := NewMapper()
	first, err := m.ColorCodes(RGB(12, 200, 131), BaseForeground)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 100; i++ {
		got, _ := m.ColorCodes(RGB(12, 200, 131), BaseForeground)
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("iteration %d: got %v, want %v", i, got, first)
		}
	}
	if got := Shared.CubeIndex(12, 200, 131); got != first[2] {
		t.Errorf("shared mapper disagrees: %d vs %d", got, first[2])
	}
}

func TestColorCodes(t *testing.T) {
	m := NewMapper()
	tests := []struct {
		name  string
		color Color
		base  int
		want  []int
	}{
		{"default fg", Default(), BaseForeground, []int{39}},
		{"default bg", Default(), BaseBackground, []int{49}},
		{"indexed low fg", Indexed(1), BaseForeground, []int{31}},
		{"indexed low bg", Indexed(7), BaseBackground, []int{47}},
		{"indexed bright fg", Indexed(9), BaseForeground, []int{91}},
		{"indexed bright bg", Indexed(15), BaseBackground, []int{107}},
		{"indexed extended", Indexed(200), BaseForeground, []int{38, 5, 200}},
		{"rgb", RGB(255, 0, 0), BaseBackground, []int{48, 5, 196}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ColorCodes(tt.color, tt.base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorCodesUnsupported(t *testing.T) {
	m := NewMapper()
	_, err := m.ColorCodes(Color{}, BaseForeground)
	if !errors.Is(err, ErrUnsupportedColor) {
		t.Fatalf("expected ErrUnsupportedColor, got %v", err)
	}
	_, err = m.Codes(Style{Fg: Default(), Bg: Color{Kind: 42}})
	if !errors.Is(err, ErrUnsupportedColor) {
		t.Fatalf("expected ErrUnsupportedColor for background, got %v", err)
	}
}

func TestCodesOrder(t *testing.T) {
	m := NewMapper()
	s := Style{
		Fg:        Indexed(2),
		Bg:        RGB(0, 0, 255),
		Bold:      true,
		Italic:    true,
		Underline: true,
		Reverse:   true,
	}
	got, err := m.Codes(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{32, 48, 5, 21, 1, 3, 4, 7}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSGR(t *testing.T) {
	m := NewMapper()
	got, err := m.SGR(Style{Fg: Indexed(3), Bg: Default(), Underline: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "\x1b[33;49;4m"; got != want {
		t.Errorf("SGR = %q, want %q", got, want)
	}
}
