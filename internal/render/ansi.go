package render

import "strconv"

// Fixed sequences.
var (
	seqReset       = []byte("\x1b[0m")
	seqClearScreen = []byte("\x1b[H\x1b[2J")
	seqShowCursor  = []byte("\x1b[?25h")
	seqHideCursor  = []byte("\x1b[?25l")
)

// ClearScreen returns the full-screen clear sequence.
func ClearScreen() []byte {
	return append([]byte(nil), seqClearScreen...)
}

// Reset returns the SGR reset sequence.
func Reset() []byte {
	return append([]byte(nil), seqReset...)
}

// AppendCursorPos appends an absolute cursor move to 1-based (row, col).
func AppendCursorPos(b []byte, row, col int) []byte {
	b = append(b, 0x1b, '[')
	b = strconv.AppendInt(b, int64(row), 10)
	b = append(b, ';')
	b = strconv.AppendInt(b, int64(col), 10)
	return append(b, 'H')
}

// AppendCursorForward appends a cursor-forward by n columns.
func AppendCursorForward(b []byte, n int) []byte {
	b = append(b, 0x1b, '[')
	b = strconv.AppendInt(b, int64(n), 10)
	return append(b, 'C')
}

// AppendCursorVisible appends DECTCEM set or reset.
func AppendCursorVisible(b []byte, visible bool) []byte {
	if visible {
		return append(b, seqShowCursor...)
	}
	return append(b, seqHideCursor...)
}
