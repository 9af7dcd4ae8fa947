// Package ptyproc runs child commands on pseudo-terminals.
package ptyproc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// ErrEmptyCommand is returned when Start is given no command text.
var ErrEmptyCommand = errors.New("empty command")

// Process is a child command attached to a PTY.
type Process struct {
	cmd  *exec.Cmd
	file *os.File

	closeOnce sync.Once
	closeErr  error
}

// Start runs command through /bin/sh on a new PTY of the given size. The
// shell execs the command so the child is the PTY's session leader.
func Start(command string, rows, cols int, env []string) (*Process, error) {
	if command == "" {
		return nil, ErrEmptyCommand
	}

	cmd := exec.Command("/bin/sh", "-c", "exec "+command)
	cmd.Env = append(os.Environ(), env...)

	f, err := pty.StartWithSize(cmd, winsize(rows, cols))
	if err != nil {
		return nil, fmt.Errorf("start %q: %w", command, err)
	}
	return &Process{cmd: cmd, file: f}, nil
}

func winsize(rows, cols int) *pty.Winsize {
	return &pty.Winsize{Rows: uint16(max(rows, 1)), Cols: uint16(max(cols, 1))}
}

// Read reads child output.
func (p *Process) Read(b []byte) (int, error) {
	return p.file.Read(b)
}

// Write sends input to the child.
func (p *Process) Write(b []byte) (int, error) {
	return p.file.Write(b)
}

// Pid returns the child's process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Close closes the PTY master, then kills and reaps the child.
// It is safe to call more than once.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.file.Close()
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	})
	return p.closeErr
}
