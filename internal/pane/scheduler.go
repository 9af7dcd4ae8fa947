package pane

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/vtmux/internal/render"
)

// TriggerUpdate schedules an incremental redraw.
func (p *Pane) TriggerUpdate() {
	p.mu.Lock()
	p.pendingUpdate = true
	p.mu.Unlock()
	p.signal()
}

// TriggerRefresh schedules a full redraw of the header and every visible
// cell.
func (p *Pane) TriggerRefresh() {
	p.mu.Lock()
	p.pendingRefresh = true
	p.mu.Unlock()
	p.signal()
}

// TriggerHeader schedules a header redraw.
func (p *Pane) TriggerHeader() {
	p.mu.Lock()
	p.pendingHeader = true
	p.mu.Unlock()
	p.signal()
}

func (p *Pane) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

type pending struct {
	update, refresh, header bool
}

func (p *Pane) takePending() pending {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := pending{update: p.pendingUpdate, refresh: p.pendingRefresh, header: p.pendingHeader}
	p.pendingUpdate, p.pendingRefresh, p.pendingHeader = false, false, false
	return t
}

// Run is the pane's update scheduler. Each wake is followed by the
// debounce delay, so triggers arriving in that window collapse into one
// render. Run returns nil when ctx is done and the first render error
// otherwise.
func (p *Pane) Run(ctx context.Context) error {
	timer := time.NewTimer(p.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.wake:
		}

		timer.Reset(p.debounce)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		t := p.takePending()
		if !t.update && !t.refresh && !t.header {
			continue
		}
		if err := p.render(t); err != nil {
			return err
		}
	}
}

// render builds one frame and submits it. A refresh invalidates the
// renderer first so every visible cell is redrawn. An active pane also
// parks the shared cursor at its child's cursor, so a frame is submitted
// when only the cursor moved.
func (p *Pane) render(t pending) error {
	winRows, winCols := p.window.Size()

	var frame []byte
	if t.refresh {
		p.renderer.Invalidate()
	}
	if t.refresh || t.header {
		var err error
		if frame, err = p.appendHeader(frame, winCols); err != nil {
			return fmt.Errorf("pane %d: %w", p.id, err)
		}
	}

	st, err := p.bridge.Snapshot()
	if err != nil {
		return fmt.Errorf("pane %d snapshot: %w", p.id, err)
	}
	vis := render.Viewport{Rows: winRows - HeaderHeight, Cols: winCols - p.left}
	body, err := p.renderer.Render(st.Grid, vis)
	if err != nil {
		return fmt.Errorf("pane %d render: %w", p.id, err)
	}
	frame = append(frame, body...)

	moved := false
	if p.active.Load() {
		if pos, ok := p.renderer.CursorAt(st.Cursor, vis); ok {
			moved = p.cursor.Park(pos, st.CursorVisible)
		} else {
			moved = p.cursor.Hide()
		}
	}
	if len(frame) == 0 && !moved {
		return nil
	}

	if err := p.cursor.Submit(p.out, frame); err != nil {
		return fmt.Errorf("pane %d: %w", p.id, err)
	}
	return nil
}
