// Package resize watches for window size changes and keeps panes in sync
// with the physical terminal.
//
// SIGWINCH only sets a flag. A poll loop picks the flag up, clears the
// screen and forces every pane to refresh. Between resizes the same loop
// forces a periodic refresh to repair any drift between what the panes
// believe is displayed and what actually is.
package resize

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/dshills/vtmux/internal/logging"
	"github.com/dshills/vtmux/internal/render"
)

// Defaults for Options.
const (
	DefaultPollInterval    = 250 * time.Millisecond
	DefaultRefreshInterval = 10 * time.Second
)

// Refresher is anything that can be told to redraw completely.
type Refresher interface {
	TriggerRefresh()
}

// Output accepts frames for the physical terminal.
type Output interface {
	Submit(frame []byte) error
}

// Options configures a Watcher.
type Options struct {
	PollInterval    time.Duration
	RefreshInterval time.Duration
	Log             *logging.Logger
}

// Watcher is the resize and anti-entropy refresh loop.
type Watcher struct {
	panes   []Refresher
	out     Output
	poll    time.Duration
	refresh time.Duration
	log     *logging.Logger

	changed atomic.Bool
}

// New returns a watcher over panes. Zero intervals take the defaults.
func New(panes []Refresher, out Output, opts Options) *Watcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	return &Watcher{
		panes:   panes,
		out:     out,
		poll:    opts.PollInterval,
		refresh: opts.RefreshInterval,
		log:     opts.Log.WithComponent("resize"),
	}
}

// Notify records a size change. It only sets a flag and is safe to call
// from any goroutine.
func (w *Watcher) Notify() {
	w.changed.Store(true)
}

// Run subscribes to window-change signals and polls until ctx is done.
// It returns the first output error.
func (w *Watcher) Run(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	notifyResize(sigCh)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				w.Notify()
			}
		}
	}()

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			switch {
			case w.changed.Swap(false):
				w.log.Debug("window size changed")
				if err := w.out.Submit(render.ClearScreen()); err != nil {
					return err
				}
				w.refreshAll()
				last = now
			case now.Sub(last) >= w.refresh:
				w.refreshAll()
				last = now
			}
		}
	}
}

func (w *Watcher) refreshAll() {
	for _, p := range w.panes {
		p.TriggerRefresh()
	}
}
