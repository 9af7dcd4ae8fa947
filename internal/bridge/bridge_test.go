package bridge

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/hinshun/vt10x"

	"github.com/dshills/vtmux/internal/grid"
	"github.com/dshills/vtmux/internal/render"
	"github.com/dshills/vtmux/internal/style"
	"github.com/dshills/vtmux/internal/vterm"
)

// fakeEngine answers the cursor request with report and any other write
// found in replies with its mapped answer.
type fakeEngine struct {
	pending  []byte
	report   string
	replies  map[string]string
	glyph    vt10x.Glyph
	requests int
}

func (f *fakeEngine) Write(p []byte) (int, error) {
	if string(p) == vterm.CursorRequest {
		f.requests++
		f.pending = append(f.pending, f.report...)
		return len(p), nil
	}
	f.pending = append(f.pending, f.replies[string(p)]...)
	return len(p), nil
}

func (f *fakeEngine) Read() []byte {
	out := f.pending
	f.pending = nil
	return out
}

func (f *fakeEngine) Size() (int, int) { return 1, 1 }

func (f *fakeEngine) Cell(int, int) vt10x.Glyph { return f.glyph }

func (f *fakeEngine) CursorVisible() bool { return true }

func plainGlyph(r rune) vt10x.Glyph {
	return vt10x.Glyph{Char: r, FG: vt10x.DefaultFG, BG: vt10x.DefaultBG}
}

func TestIngestForwardsReplies(t *testing.T) {
	var child bytes.Buffer
	eng := &fakeEngine{replies: map[string]string{"\x1b[5n": "\x1b[0n"}, glyph: plainGlyph('x')}
	b := New(eng, &child, nil)

	if err := b.Ingest([]byte("\x1b[5n")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got := child.String(); got != "\x1b[0n" {
		t.Errorf("child received %q", got)
	}
}

func TestSnapshotCapturesGridAndCursor(t *testing.T) {
	var child bytes.Buffer
	b := New(vterm.New(3, 10), &child, nil)

	if err := b.Ingest([]byte("\x1b[1;31mhi \x1b[0m\r\n\x1b[38;2;1;2;3mz")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	st, err := b.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	g := st.Grid
	if g.Rows() != 3 || g.Cols() != 10 {
		t.Fatalf("grid is %dx%d", g.Rows(), g.Cols())
	}
	h := g.At(0, 0)
	want := style.Style{Fg: style.Indexed(1), Bg: style.Default(), Bold: true}
	if h.Text != "h" || h.Style != want {
		t.Errorf("cell 0,0 = %+v", h)
	}
	if sp := g.At(0, 2); sp.Text != "" || sp.Style != want {
		t.Errorf("styled space should have empty text and keep its style, got %+v", sp)
	}
	if z := g.At(1, 0); z.Style.Fg != style.RGB(1, 2, 3) {
		t.Errorf("cell 1,0 fg = %v", z.Style.Fg)
	}
	if blank := g.At(2, 9); blank != grid.Blank() {
		t.Errorf("untouched cell = %+v", blank)
	}
	if st.Cursor != (grid.CursorPos{Row: 2, Col: 2}) {
		t.Errorf("cursor = %+v", st.Cursor)
	}
	if !st.CursorVisible {
		t.Error("cursor should be visible")
	}
	if child.Len() != 0 {
		t.Errorf("cursor report leaked to child: %q", child.String())
	}
}

func TestSnapshotCursorVisibility(t *testing.T) {
	b := New(vterm.New(2, 4), &bytes.Buffer{}, nil)
	if err := b.Ingest([]byte("\x1b[?25l")); err != nil {
		t.Fatal(err)
	}
	st, err := b.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if st.CursorVisible {
		t.Error("hidden cursor reported visible")
	}
}

func TestSnapshotLaysOutWideGlyph(t *testing.T) {
	b := New(vterm.New(1, 4), &bytes.Buffer{}, nil)
	if err := b.Ingest([]byte("中x")); err != nil {
		t.Fatal(err)
	}
	st, err := b.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	want := []grid.Cell{
		{Text: "中", Style: style.Plain()},
		{Style: style.Plain(), Continuation: true},
		{Text: "x", Style: style.Plain()},
		grid.Blank(),
	}
	for c, w := range want {
		if got := st.Grid.At(0, c); got != w {
			t.Errorf("cell %d = %+v, want %+v", c, got, w)
		}
	}
	if st.Cursor != (grid.CursorPos{Row: 1, Col: 4}) {
		t.Errorf("cursor = %+v, want after x", st.Cursor)
	}
}

func TestSnapshotWideGlyphReplaysIntoPane(t *testing.T) {
	b := New(vterm.New(1, 4), &bytes.Buffer{}, nil)
	r := render.New(1, 4, render.Placement{}, style.Shared)
	vis := render.Viewport{Rows: 1, Cols: 4}

	if err := b.Ingest([]byte("中x")); err != nil {
		t.Fatal(err)
	}
	st, err := b.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	first, err := r.Render(st.Grid, vis)
	if err != nil {
		t.Fatal(err)
	}
	if want := "\x1b[1;1H\x1b[39;49m中x \x1b[0m"; string(first) != want {
		t.Errorf("first frame = %q, want %q", first, want)
	}

	if err := b.Ingest([]byte("\x1b[1;2Hy")); err != nil {
		t.Fatal(err)
	}
	if st, err = b.Snapshot(); err != nil {
		t.Fatal(err)
	}
	second, err := r.Render(st.Grid, vis)
	if err != nil {
		t.Fatal(err)
	}
	// The engine keeps 中 in one column, so its column 2 is grid column 3.
	if want := "\x1b[1;1H\x1b[2C\x1b[39;49my\x1b[0m"; string(second) != want {
		t.Errorf("second frame = %q, want %q", second, want)
	}
}

func TestSnapshotJoinsCombiningMark(t *testing.T) {
	b := New(vterm.New(1, 4), &bytes.Buffer{}, nil)
	if err := b.Ingest([]byte("e\u0301x")); err != nil {
		t.Fatal(err)
	}
	st, err := b.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if got := st.Grid.At(0, 0).Text; got != "e\u0301" {
		t.Errorf("cell 0 text = %q", got)
	}
	if got := st.Grid.At(0, 1).Text; got != "x" {
		t.Errorf("cell 1 text = %q", got)
	}
	if st.Cursor != (grid.CursorPos{Row: 1, Col: 3}) {
		t.Errorf("cursor = %+v", st.Cursor)
	}
}

func TestLayoutRowWideGlyphWithoutRoom(t *testing.T) {
	glyphs := []vt10x.Glyph{plainGlyph('a'), plainGlyph('b'), plainGlyph('c'), plainGlyph('中')}
	cells, at, err := layoutRow(glyphs, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 4 {
		t.Fatalf("got %d cells", len(cells))
	}
	if last := cells[3]; last.Text != "" || last.Continuation {
		t.Errorf("last cell = %+v, want blank", last)
	}
	if at[3] != 3 || at[4] != 4 {
		t.Errorf("column map = %v", at)
	}
}

func TestMapColumn(t *testing.T) {
	at := []int{0, 0, 2, 3, 4}
	tests := []struct{ col, want int }{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 3},
		{5, 5},
		{7, 7},
	}
	for _, tt := range tests {
		if got := mapColumn(at, tt.col); got != tt.want {
			t.Errorf("mapColumn(%d) = %d, want %d", tt.col, got, tt.want)
		}
	}
}

func TestSnapshotFlushesPendingRepliesFirst(t *testing.T) {
	var child bytes.Buffer
	eng := &fakeEngine{pending: []byte("\x1b[0n"), report: "\x1b[1;1R", glyph: plainGlyph('x')}
	b := New(eng, &child, nil)

	st, err := b.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if child.String() != "\x1b[0n" {
		t.Errorf("child received %q", child.String())
	}
	if st.Cursor != (grid.CursorPos{Row: 1, Col: 1}) {
		t.Errorf("cursor = %+v", st.Cursor)
	}
	if eng.requests != 1 {
		t.Errorf("engine saw %d cursor requests", eng.requests)
	}
}

func TestSnapshotMalformedReportReusesLastCursor(t *testing.T) {
	eng := &fakeEngine{report: "garbage", glyph: plainGlyph('x')}
	b := New(eng, &bytes.Buffer{}, nil)

	st, err := b.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if st.Cursor != (grid.CursorPos{Row: 1, Col: 1}) {
		t.Errorf("first fallback cursor = %+v", st.Cursor)
	}

	eng.report = "\x1b[3;5R"
	if st, _ = b.Snapshot(); st.Cursor != (grid.CursorPos{Row: 3, Col: 5}) {
		t.Fatalf("cursor = %+v", st.Cursor)
	}

	eng.report = "\x1b[;R"
	if st, _ = b.Snapshot(); st.Cursor != (grid.CursorPos{Row: 3, Col: 5}) {
		t.Errorf("fallback cursor = %+v, want last known", st.Cursor)
	}
}

func TestSnapshotUnsupportedColor(t *testing.T) {
	bad := vt10x.Glyph{Char: 'x', FG: vt10x.DefaultCursor, BG: vt10x.DefaultBG}
	b := New(&fakeEngine{report: "\x1b[1;1R", glyph: bad}, &bytes.Buffer{}, nil)

	_, err := b.Snapshot()
	if !errors.Is(err, style.ErrUnsupportedColor) {
		t.Fatalf("expected ErrUnsupportedColor, got %v", err)
	}
}

func TestConvertColor(t *testing.T) {
	tests := []struct {
		in   vt10x.Color
		want style.Color
	}{
		{vt10x.DefaultFG, style.Default()},
		{vt10x.DefaultBG, style.Default()},
		{3, style.Indexed(3)},
		{200, style.Indexed(200)},
		{0x102030, style.RGB(0x10, 0x20, 0x30)},
	}
	for _, tt := range tests {
		got, err := convertColor(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("convertColor(%#x) = %v, %v; want %v", uint32(tt.in), got, err, tt.want)
		}
	}
}

func TestParseCursorReport(t *testing.T) {
	tests := []struct {
		input string
		want  grid.CursorPos
		ok    bool
	}{
		{"\x1b[1;1R", grid.CursorPos{Row: 1, Col: 1}, true},
		{"\x1b[24;80R", grid.CursorPos{Row: 24, Col: 80}, true},
		{"noise\x1b[2;3Rtrail", grid.CursorPos{Row: 2, Col: 3}, true},
		{"", grid.CursorPos{}, false},
		{"\x1b[2R", grid.CursorPos{}, false},
		{"\x1b[a;bR", grid.CursorPos{}, false},
	}

	for _, tt := range tests {
		got, err := parseCursorReport([]byte(tt.input))
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("parseCursorReport(%q) = %+v, %v", tt.input, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrBadCursorReport) {
			t.Errorf("parseCursorReport(%q) error = %v", tt.input, err)
		}
	}
}

func TestBridgeConcurrentAccess(t *testing.T) {
	var child safeBuffer
	eng := &fakeEngine{
		report:  "\x1b[1;1R",
		replies: map[string]string{"text\x1b[5n\r\n": "\x1b[0n"},
		glyph:   plainGlyph('x'),
	}
	b := New(eng, &child, nil)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 50 {
				_ = b.Ingest([]byte("text\x1b[5n\r\n"))
			}
		}()
		go func() {
			defer wg.Done()
			for range 50 {
				if _, err := b.Snapshot(); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if want := 4 * 50 * len("\x1b[0n"); child.Len() != want {
		t.Errorf("child received %d reply bytes, want %d", child.Len(), want)
	}
}

func TestBridgeConcurrentWithEmulator(t *testing.T) {
	b := New(vterm.New(5, 20), &bytes.Buffer{}, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 100 {
			_ = b.Ingest([]byte("text 中\r\n"))
		}
	}()
	go func() {
		defer wg.Done()
		for range 100 {
			if _, err := b.Snapshot(); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *safeBuffer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}
