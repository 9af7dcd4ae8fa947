package vterm

import "errors"

// ErrEmulator wraps a failure inside the emulator while parsing output.
var ErrEmulator = errors.New("terminal emulator failure")
