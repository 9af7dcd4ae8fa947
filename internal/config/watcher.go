package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/vtmux/internal/logging"
)

// Watcher reloads the configuration file when it changes.
type Watcher struct {
	path     string
	lookup   LookupFunc
	onChange func(*Config)
	log      *logging.Logger
	fsw      *fsnotify.Watcher
}

// NewWatcher watches the directory holding path, so that editors that
// replace the file on save are seen too. onChange receives every
// successfully reloaded configuration.
func NewWatcher(path string, lookup LookupFunc, onChange func(*Config), log *logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.Nop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		lookup:   lookup,
		onChange: onChange,
		log:      log.WithComponent("config"),
		fsw:      fsw,
	}, nil
}

// Run delivers reloads until ctx is done. A file that fails to load is
// logged and the previous configuration stays in effect.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cfg, err := LoadWithEnv(w.path, w.lookup)
			if err != nil {
				w.log.Warn("reload %s: %v", w.path, err)
				continue
			}
			w.log.Info("reloaded %s", w.path)
			w.onChange(cfg)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}
