package bridge

import "errors"

// ErrBadCursorReport is logged when the engine's answer to a cursor
// position request cannot be parsed. Snapshot recovers from it by reusing
// the last known cursor.
var ErrBadCursorReport = errors.New("malformed cursor position report")
