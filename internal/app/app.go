// Package app wires the vtmux components together and owns the process
// lifecycle. Every fatal condition ends up in Run's single return path,
// which repositions the cursor, restores the terminal and reports.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/vtmux/internal/config"
	"github.com/dshills/vtmux/internal/console"
	"github.com/dshills/vtmux/internal/logging"
	"github.com/dshills/vtmux/internal/mux"
	"github.com/dshills/vtmux/internal/output"
	"github.com/dshills/vtmux/internal/pane"
	"github.com/dshills/vtmux/internal/ptyproc"
	"github.com/dshills/vtmux/internal/render"
	"github.com/dshills/vtmux/internal/resize"
	"github.com/dshills/vtmux/internal/style"
)

// childTerm is the terminal type advertised to children; it matches what
// the emulator understands.
const childTerm = "TERM=xterm-256color"

// Terminal is the physical terminal session.
type Terminal interface {
	Input() io.Reader
	Size() (rows, cols int)
	Restore() error
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty means config.DefaultPath.
	ConfigPath string
	// Geometry fixes every pane to "WxH". Empty splits the window.
	Geometry string
	// LogFile and LogLevel override the configuration when set.
	LogFile  string
	LogLevel string
	// Commands run one per pane. Empty runs the configured shell.
	Commands []string

	// Terminal and Output replace the real console, mainly for tests.
	Terminal Terminal
	Output   io.Writer
}

// Application is one vtmux session.
type Application struct {
	opts     Options
	cfgPath  string
	cfg      *config.Config
	geometry *config.Geometry
	log      *logging.Logger
	logFile  io.Closer
}

// New validates options and loads configuration. Nothing touches the
// terminal or starts a child yet, so errors here leave the screen alone.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts, cfgPath: opts.ConfigPath}

	if opts.Geometry != "" {
		g, err := config.ParseGeometry(opts.Geometry)
		if err != nil {
			return nil, err
		}
		app.geometry = &g
	}

	if app.cfgPath == "" {
		app.cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(app.cfgPath)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	if opts.LogFile != "" {
		cfg.Log.File = opts.LogFile
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	app.cfg = cfg

	w, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return nil, &InitError{Component: "logging", Err: err}
	}
	if w != nil {
		app.logFile = w
		app.log = logging.New(logging.Config{Level: logging.ParseLevel(cfg.Log.Level), Output: w})
	} else {
		app.log = logging.Nop()
	}
	return app, nil
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

func (app *Application) commands() []string {
	if len(app.opts.Commands) > 0 {
		return app.opts.Commands
	}
	return []string{app.cfg.Shell}
}

func (app *Application) theme() (pane.Theme, error) {
	return themeFrom(app.cfg)
}

func themeFrom(cfg *config.Config) (pane.Theme, error) {
	active, inactive, err := cfg.HeaderStyles()
	if err != nil {
		return pane.Theme{}, err
	}
	return pane.Theme{Active: active, Inactive: inactive}, nil
}

// Run starts every pane and blocks until the session ends. It returns
// the error that ended it; see ExitCode.
func (app *Application) Run() (err error) {
	defer func() {
		if app.logFile != nil {
			_ = app.logFile.Close()
		}
	}()

	theme, err := app.theme()
	if err != nil {
		return err
	}

	term := app.opts.Terminal
	out := app.opts.Output
	if term == nil {
		c, err := console.Open(os.Stdin, os.Stdout, console.Options{AltScreen: app.cfg.Render.AltScreen})
		if err != nil {
			return &InitError{Component: "console", Err: err}
		}
		term = c
		if out == nil {
			out = os.Stdout
		}
	}
	defer func() {
		if rerr := term.Restore(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	winRows, winCols := term.Size()
	cmds := app.commands()
	slots := config.Layout(len(cmds), winRows, winCols, pane.HeaderHeight, app.geometry)

	writer := output.New(out)
	cursor := pane.NewCursor()
	panes := make([]*pane.Pane, 0, len(cmds))
	var procs []*ptyproc.Process
	defer func() {
		for _, p := range procs {
			_ = p.Close()
		}
	}()

	for i, cmd := range cmds {
		slot := slots[i]
		proc, serr := ptyproc.Start(cmd, slot.Rows, slot.Cols, []string{childTerm})
		if serr != nil {
			return &InitError{Component: fmt.Sprintf("pane %d", i+1), Err: serr}
		}
		procs = append(procs, proc)
		p := pane.New(pane.Options{
			ID:       i + 1,
			Command:  cmd,
			Rows:     slot.Rows,
			Cols:     slot.Cols,
			Left:     slot.Left,
			Debounce: app.cfg.Render.Debounce.Std(),
			Theme:    theme,
			Mapper:   style.Shared,
			Cursor:   cursor,
			Log:      app.log,
		}, proc, writer, term)
		panes = append(panes, p)
		app.log.Info("started pane %d (pid %d, session %s): %q %dx%d at column %d",
			i+1, proc.Pid(), p.Session(), cmd, slot.Cols, slot.Rows, slot.Left+1)
	}

	targets := make([]mux.Target, len(panes))
	refreshers := make([]resize.Refresher, len(panes))
	for i, p := range panes {
		targets[i] = p
		refreshers[i] = p
	}
	m := mux.New(targets, 1, app.log)
	watcher := resize.New(refreshers, writer, resize.Options{
		PollInterval:    app.cfg.Render.ResizePoll.Std(),
		RefreshInterval: app.cfg.Render.RefreshInterval.Std(),
		Log:             app.log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGHUP)
	defer stopSignals()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return writer.Run(gctx) })
	for _, p := range panes {
		g.Go(func() error { return p.Run(gctx) })
	}
	g.Go(func() error { return watcher.Run(gctx) })
	if cw := app.configWatcher(panes); cw != nil {
		g.Go(func() error { return cw.Run(gctx) })
	}

	// Readers block in Read and cannot observe cancellation, so they
	// report on a channel instead of joining the group.
	readErrs := make(chan error, len(panes)+1)
	for _, p := range panes {
		go func() { readErrs <- p.Pump() }()
	}
	go func() { readErrs <- m.Run(gctx, term.Input()) }()

	var first error
	select {
	case first = <-readErrs:
	case <-gctx.Done():
	case <-sigCtx.Done():
		if ctx.Err() == nil {
			first = ErrTerminated
		}
	}
	cancel()
	if gerr := g.Wait(); first == nil {
		first = gerr
	}
	if first == nil {
		first = errors.New("session ended")
	}
	app.log.Info("session ending: %v", first)

	if ferr := writer.Flush(app.finalFrame(panes, term)); ferr != nil {
		app.log.Error("final frame: %v", ferr)
	}
	return first
}

// finalFrame parks the cursor on the first line below the panes, shows
// it and resets attributes so the shell prompt after exit starts clean.
func (app *Application) finalFrame(panes []*pane.Pane, term Terminal) []byte {
	winRows, _ := term.Size()
	bottom := 0
	for _, p := range panes {
		rows, _ := p.Size()
		bottom = max(bottom, rows)
	}
	row := min(bottom+pane.HeaderHeight+1, max(winRows, 1))
	frame := render.AppendCursorVisible(render.Reset(), true)
	frame = render.AppendCursorPos(frame, row, 1)
	return append(frame, '\r', '\n')
}

// configWatcher returns a watcher that pushes header theme changes to
// the panes, or nil when the configuration directory cannot be watched.
func (app *Application) configWatcher(panes []*pane.Pane) *config.Watcher {
	if app.cfgPath == "" {
		return nil
	}
	cw, err := config.NewWatcher(app.cfgPath, os.LookupEnv, func(cfg *config.Config) {
		theme, err := themeFrom(cfg)
		if err != nil {
			app.log.Warn("ignoring header theme: %v", err)
			return
		}
		for _, p := range panes {
			p.SetTheme(theme)
		}
	}, app.log)
	if err != nil {
		app.log.Debug("config live reload disabled: %v", err)
		return nil
	}
	return cw
}
