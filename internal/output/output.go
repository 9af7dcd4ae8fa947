// Package output serializes writes to the physical terminal.
//
// Every producer (pane renders, headers, resize clears) submits complete
// frames to one Writer. Only the Writer's Run loop touches the
// underlying stream, so escape sequences from different producers never
// interleave.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrClosed is returned by Submit after the writer has stopped.
var ErrClosed = errors.New("output writer closed")

const queueSize = 64

// Writer owns the physical output stream.
type Writer struct {
	out    io.Writer
	frames chan []byte

	stopOnce sync.Once
	stopped  chan struct{}
}

// New returns a writer for out. Frames are written once Run is running.
func New(out io.Writer) *Writer {
	return &Writer{
		out:     out,
		frames:  make(chan []byte, queueSize),
		stopped: make(chan struct{}),
	}
}

// Submit queues a frame. The caller must not modify frame afterwards.
// Empty frames are dropped. Submit blocks while the queue is full.
func (w *Writer) Submit(frame []byte) error {
	if len(frame) == 0 {
		return nil
	}
	select {
	case <-w.stopped:
		return ErrClosed
	default:
	}
	select {
	case w.frames <- frame:
		return nil
	case <-w.stopped:
		return ErrClosed
	}
}

// Run writes submitted frames in order until ctx is done or a write
// fails. Frames still queued when Run returns are left for Flush.
func (w *Writer) Run(ctx context.Context) error {
	defer w.stopOnce.Do(func() { close(w.stopped) })
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-w.frames:
			if _, err := w.out.Write(frame); err != nil {
				return fmt.Errorf("write frame: %w", err)
			}
		}
	}
}

// Flush writes every queued frame followed by final. It must only be
// called after Run has returned, or instead of Run.
func (w *Writer) Flush(final []byte) error {
	w.stopOnce.Do(func() { close(w.stopped) })
	for {
		select {
		case frame := <-w.frames:
			if _, err := w.out.Write(frame); err != nil {
				return fmt.Errorf("write frame: %w", err)
			}
		default:
			if len(final) == 0 {
				return nil
			}
			if _, err := w.out.Write(final); err != nil {
				return fmt.Errorf("write final frame: %w", err)
			}
			return nil
		}
	}
}
