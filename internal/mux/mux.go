// Package mux routes keyboard input to panes by tab.
//
// ESC followed by a digit (what most terminals send for Alt+digit)
// selects a tab. Tab 0 broadcasts to every pane; tab n sends to the pane
// whose ID is n. All other bytes go to the selected panes unchanged.
// An ESC that ends a read is held until the next read or EscTimeout,
// so a switch split across reads is still recognized.
package mux

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dshills/vtmux/internal/logging"
)

// Broadcast is the tab that routes input to every pane.
const Broadcast = 0

const esc = 0x1b

const readBufferSize = 1024

// EscTimeout is how long a held ESC waits for its next byte before it is
// sent on its own.
const EscTimeout = 25 * time.Millisecond

// Target is a pane as the multiplexer sees it.
type Target interface {
	ID() int
	Send(b []byte) error
	SetActive(active bool)
}

// Mux owns the tab selection.
type Mux struct {
	targets    []Target
	log        *logging.Logger
	escTimeout time.Duration

	mu        sync.Mutex
	activeTab int

	// routeMu serializes Route with the timed release of a held ESC.
	routeMu  sync.Mutex
	heldEsc  bool
	escGen   uint64
	escTimer *time.Timer
}

// New returns a multiplexer over targets with tab initial selected.
// An initial tab that matches no target selects Broadcast.
func New(targets []Target, initial int, log *logging.Logger) *Mux {
	if log == nil {
		log = logging.Nop()
	}
	m := &Mux{targets: targets, log: log.WithComponent("mux"), escTimeout: EscTimeout}
	if !m.hasTab(initial) {
		initial = Broadcast
	}
	m.apply(initial)
	return m
}

// ActiveTab returns the selected tab.
func (m *Mux) ActiveTab() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeTab
}

func (m *Mux) hasTab(tab int) bool {
	if tab == Broadcast {
		return true
	}
	for _, t := range m.targets {
		if t.ID() == tab {
			return true
		}
	}
	return false
}

// Select makes tab the active selection and updates every pane's
// activation flag. Tabs with no pane are ignored.
func (m *Mux) Select(tab int) {
	if !m.hasTab(tab) {
		m.log.Debug("ignoring switch to empty tab %d", tab)
		return
	}
	m.apply(tab)
}

func (m *Mux) apply(tab int) {
	m.mu.Lock()
	m.activeTab = tab
	m.mu.Unlock()
	for _, t := range m.targets {
		t.SetActive(tab == Broadcast || t.ID() == tab)
	}
}

// Route handles one chunk of keyboard input. Tab switches may appear
// anywhere in the chunk; the bytes around them are forwarded in order.
func (m *Mux) Route(p []byte) error {
	m.routeMu.Lock()
	defer m.routeMu.Unlock()

	m.stopEscTimer()
	if m.heldEsc {
		m.heldEsc = false
		p = append([]byte{esc}, p...)
	}

	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] != esc {
			continue
		}
		if i+1 == len(p) {
			if err := m.forward(p[start:i]); err != nil {
				return err
			}
			m.holdEsc()
			return nil
		}
		if p[i+1] < '0' || p[i+1] > '9' {
			continue
		}
		if err := m.forward(p[start:i]); err != nil {
			return err
		}
		m.Select(int(p[i+1] - '0'))
		i++
		start = i + 1
	}
	return m.forward(p[start:])
}

// FlushEscape sends a held ESC to the selected panes.
func (m *Mux) FlushEscape() error {
	m.routeMu.Lock()
	defer m.routeMu.Unlock()

	m.stopEscTimer()
	return m.flushEscLocked()
}

func (m *Mux) flushEscLocked() error {
	if !m.heldEsc {
		return nil
	}
	m.heldEsc = false
	return m.forward([]byte{esc})
}

func (m *Mux) holdEsc() {
	m.heldEsc = true
	m.escGen++
	gen := m.escGen
	m.escTimer = time.AfterFunc(m.escTimeout, func() {
		m.routeMu.Lock()
		defer m.routeMu.Unlock()
		// A later Route may have consumed this ESC and held another.
		if gen != m.escGen {
			return
		}
		if err := m.flushEscLocked(); err != nil {
			m.log.Warn("send held escape: %v", err)
		}
	})
}

func (m *Mux) stopEscTimer() {
	if m.escTimer != nil {
		m.escTimer.Stop()
		m.escTimer = nil
	}
	m.escGen++
}

func (m *Mux) forward(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	tab := m.ActiveTab()
	for _, t := range m.targets {
		if tab != Broadcast && t.ID() != tab {
			continue
		}
		if err := t.Send(b); err != nil {
			return err
		}
	}
	return nil
}

// Run reads input until it fails or ctx is done. A blocked read is not
// interrupted by ctx. A held ESC is sent before a read error is returned.
func (m *Mux) Run(ctx context.Context, in io.Reader) error {
	buf := make([]byte, readBufferSize)
	for {
		n, err := in.Read(buf)
		if ctx.Err() != nil {
			m.routeMu.Lock()
			m.stopEscTimer()
			m.routeMu.Unlock()
			return nil
		}
		if n > 0 {
			if rerr := m.Route(buf[:n]); rerr != nil {
				return rerr
			}
		}
		if err != nil {
			if ferr := m.FlushEscape(); ferr != nil {
				return ferr
			}
			return fmt.Errorf("read input: %w", err)
		}
	}
}
