// Package pane couples one child process with its emulation bridge,
// screen renderer and header, and schedules its redraws.
package pane

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/vtmux/internal/bridge"
	"github.com/dshills/vtmux/internal/logging"
	"github.com/dshills/vtmux/internal/render"
	"github.com/dshills/vtmux/internal/style"
	"github.com/dshills/vtmux/internal/vterm"
)

// HeaderHeight is the number of window rows above every pane's content.
const HeaderHeight = 1

// MinDebounce is the shortest delay between a wake and a render.
const MinDebounce = 10 * time.Millisecond

const readBufferSize = 4096

// Output accepts finished frames for the physical terminal.
type Output interface {
	Submit(frame []byte) error
}

// Window reports the current physical window size.
type Window interface {
	Size() (rows, cols int)
}

// WindowFunc adapts a function to Window.
type WindowFunc func() (rows, cols int)

// Size calls f.
func (f WindowFunc) Size() (rows, cols int) { return f() }

// Options configures a pane.
type Options struct {
	// ID is the pane's tab number, starting at 1.
	ID      int
	Command string
	// Rows and Cols are the fixed emulated size.
	Rows, Cols int
	// Left is the number of window columns left of the pane.
	Left int
	// Debounce is raised to MinDebounce when shorter.
	Debounce time.Duration
	// Theme defaults to DefaultTheme when zero.
	Theme  Theme
	Mapper *style.Mapper
	// Cursor is shared by every pane drawing to the same window. Nil
	// gives the pane a cursor of its own.
	Cursor *Cursor
	Log    *logging.Logger
}

// Pane is one child process drawn into a column span of the window.
type Pane struct {
	id      int
	session string
	command string

	rows, cols int
	left       int

	child    io.ReadWriter
	bridge   *bridge.Bridge
	renderer *render.Renderer
	mapper   *style.Mapper
	cursor   *Cursor
	out      Output
	window   Window
	log      *logging.Logger

	active atomic.Bool
	theme  atomic.Pointer[Theme]

	debounce time.Duration

	mu             sync.Mutex
	pendingUpdate  bool
	pendingRefresh bool
	pendingHeader  bool
	wake           chan struct{}
}

// New returns a pane reading from and writing to child. The first
// scheduled render is a full redraw including the header.
func New(opts Options, child io.ReadWriter, out Output, win Window) *Pane {
	if opts.Mapper == nil {
		opts.Mapper = style.Shared
	}
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	if opts.Theme == (Theme{}) {
		opts.Theme = DefaultTheme()
	}
	if opts.Cursor == nil {
		opts.Cursor = NewCursor()
	}
	session := uuid.NewString()
	log := opts.Log.WithComponent("pane").WithFields(map[string]any{
		"pane":    opts.ID,
		"session": session,
	})

	p := &Pane{
		id:       opts.ID,
		session:  session,
		command:  opts.Command,
		rows:     opts.Rows,
		cols:     opts.Cols,
		left:     opts.Left,
		child:    child,
		bridge:   bridge.New(vterm.New(opts.Rows, opts.Cols), child, log),
		renderer: render.New(opts.Rows, opts.Cols, render.Placement{Top: HeaderHeight, Left: opts.Left}, opts.Mapper),
		mapper:   opts.Mapper,
		cursor:   opts.Cursor,
		out:      out,
		window:   win,
		log:      log,
		debounce: max(opts.Debounce, MinDebounce),
		wake:     make(chan struct{}, 1),
	}
	theme := opts.Theme
	p.theme.Store(&theme)
	p.TriggerRefresh()
	return p
}

// ID returns the pane's tab number.
func (p *Pane) ID() int { return p.id }

// Session returns the unique id used to tag this pane's log records.
func (p *Pane) Session() string { return p.session }

// Command returns the command line the pane runs.
func (p *Pane) Command() string { return p.command }

// Size returns the fixed emulated size.
func (p *Pane) Size() (rows, cols int) { return p.rows, p.cols }

// Left returns the number of window columns left of the pane.
func (p *Pane) Left() int { return p.left }

// Active reports whether the pane is the selected tab.
func (p *Pane) Active() bool { return p.active.Load() }

// SetActive changes the selection flag and schedules a header redraw
// when it changed. The redraw also parks the shared cursor when the pane
// became active.
func (p *Pane) SetActive(active bool) {
	if p.active.Swap(active) != active {
		p.TriggerHeader()
	}
}

// SetTheme replaces the header styles and forces a full refresh.
func (p *Pane) SetTheme(t Theme) {
	p.theme.Store(&t)
	p.TriggerRefresh()
}

// Send forwards input bytes to the child.
func (p *Pane) Send(b []byte) error {
	if _, err := p.child.Write(b); err != nil {
		return fmt.Errorf("pane %d input: %w", p.id, err)
	}
	return nil
}

// Pump copies child output into the emulator until the child's PTY fails,
// which it reports as ErrChildExited. It does not observe cancellation;
// closing the PTY ends it.
func (p *Pane) Pump() error {
	buf := make([]byte, readBufferSize)
	for {
		n, err := p.child.Read(buf)
		if n > 0 {
			if ierr := p.bridge.Ingest(buf[:n]); ierr != nil {
				return fmt.Errorf("pane %d: %w", p.id, ierr)
			}
			p.TriggerUpdate()
		}
		if err != nil {
			p.log.Info("child output closed: %v", err)
			return fmt.Errorf("pane %d (%s): %w: %v", p.id, p.command, ErrChildExited, err)
		}
	}
}
