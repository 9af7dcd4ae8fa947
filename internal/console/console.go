// Package console manages the physical terminal vtmux draws on.
//
// It puts the input side in raw mode, reads the window size, and emits
// the setup and teardown sequences for the user's terminal type, taken
// from terminfo when the type is known.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2/terminfo"
	_ "github.com/gdamore/tcell/v2/terminfo/base" // common terminal descriptions
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNotTerminal is returned by Open when input is not a terminal.
var ErrNotTerminal = errors.New("input is not a terminal")

// Fallback size when the window size cannot be read.
const (
	FallbackRows = 24
	FallbackCols = 80
)

// Sequences used when terminfo has no entry for the terminal.
const (
	ansiEnterCA    = "\x1b[?1049h"
	ansiExitCA     = "\x1b[?1049l"
	ansiClear      = "\x1b[H\x1b[2J"
	ansiShowCursor = "\x1b[?25h"
	ansiAttrOff    = "\x1b[0m"
)

// Sequences is the set of control strings a Console emits.
type Sequences struct {
	EnterCA    string
	ExitCA     string
	Clear      string
	ShowCursor string
	AttrOff    string
}

// LookupSequences returns the sequences for termName, falling back to
// plain ANSI for unknown terminals or empty capabilities.
func LookupSequences(termName string) Sequences {
	s := Sequences{
		EnterCA:    ansiEnterCA,
		ExitCA:     ansiExitCA,
		Clear:      ansiClear,
		ShowCursor: ansiShowCursor,
		AttrOff:    ansiAttrOff,
	}
	ti, err := terminfo.LookupTerminfo(termName)
	if err != nil {
		return s
	}
	use := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	use(&s.EnterCA, ti.EnterCA)
	use(&s.ExitCA, ti.ExitCA)
	use(&s.Clear, ti.Clear)
	use(&s.ShowCursor, ti.ShowCursor)
	use(&s.AttrOff, ti.AttrOff)
	return s
}

// Options configures Open.
type Options struct {
	// AltScreen switches to the alternate screen for the session.
	AltScreen bool
	// Term is the terminal type. Empty means $TERM.
	Term string
}

// Console is an open raw-mode session on a terminal.
type Console struct {
	in    *os.File
	out   io.Writer
	outFd int
	seq   Sequences
	alt   bool

	mu       sync.Mutex
	state    *term.State
	lastRows int
	lastCols int
}

// Open puts in into raw mode and prepares out for drawing.
func Open(in, out *os.File, opts Options) (*Console, error) {
	inFd := int(in.Fd())
	if !term.IsTerminal(inFd) {
		return nil, ErrNotTerminal
	}
	state, err := term.MakeRaw(inFd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	if opts.Term == "" {
		opts.Term = os.Getenv("TERM")
	}

	c := &Console{
		in:       in,
		out:      out,
		outFd:    int(out.Fd()),
		seq:      LookupSequences(opts.Term),
		alt:      opts.AltScreen,
		state:    state,
		lastRows: FallbackRows,
		lastCols: FallbackCols,
	}
	if _, err := io.WriteString(out, c.setup()); err != nil {
		_ = term.Restore(inFd, state)
		return nil, fmt.Errorf("write setup: %w", err)
	}
	return c, nil
}

func (c *Console) setup() string {
	if c.alt {
		return c.seq.EnterCA + c.seq.Clear
	}
	return c.seq.Clear
}

func (c *Console) teardown() string {
	s := c.seq.AttrOff + c.seq.ShowCursor
	if c.alt {
		s += c.seq.ExitCA
	}
	return s
}

// Input returns the raw keyboard stream.
func (c *Console) Input() io.Reader {
	return c.in
}

// Size returns the window size. When the size cannot be read the last
// good size is returned.
func (c *Console) Size() (rows, cols int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ws, err := unix.IoctlGetWinsize(c.outFd, unix.TIOCGWINSZ)
	if err == nil && ws.Row > 0 && ws.Col > 0 {
		c.lastRows, c.lastCols = int(ws.Row), int(ws.Col)
	}
	return c.lastRows, c.lastCols
}

// Restore writes the teardown sequences and leaves raw mode. It is safe
// to call more than once.
func (c *Console) Restore() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil {
		return nil
	}
	_, werr := io.WriteString(c.out, c.teardown())
	rerr := term.Restore(int(c.in.Fd()), c.state)
	c.state = nil
	return errors.Join(werr, rerr)
}
