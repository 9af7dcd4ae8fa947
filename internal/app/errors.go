package app

import (
	"errors"
	"fmt"

	"github.com/dshills/vtmux/internal/pane"
)

// Application errors.
var (
	// ErrChildExited is the normal end of a session: a pane's child closed
	// its terminal.
	ErrChildExited = pane.ErrChildExited

	// ErrTerminated indicates the process received SIGTERM or SIGHUP.
	ErrTerminated = errors.New("terminated by signal")
)

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ExitCode maps the error Run returned to a process exit status.
// Normal endings exit 0.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, ErrChildExited) || errors.Is(err, ErrTerminated) {
		return 0
	}
	return 1
}
