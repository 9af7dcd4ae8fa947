package pane

import "errors"

// ErrChildExited reports that a pane's child closed its PTY, normally
// because the process exited. It ends the whole program.
var ErrChildExited = errors.New("child process exited")
