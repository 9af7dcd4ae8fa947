package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/vtmux/internal/style"
)

// MinDebounce is the smallest accepted render debounce.
const MinDebounce = 10 * time.Millisecond

// Config is the complete vtmux configuration.
type Config struct {
	// Shell runs when no command is given.
	Shell  string       `toml:"shell"`
	Render RenderConfig `toml:"render"`
	Header HeaderConfig `toml:"header"`
	Log    LogConfig    `toml:"log"`
}

// RenderConfig tunes redraw timing.
type RenderConfig struct {
	Debounce        Duration `toml:"debounce"`
	RefreshInterval Duration `toml:"refresh_interval"`
	ResizePoll      Duration `toml:"resize_poll"`
	AltScreen       bool     `toml:"alt_screen"`
}

// HeaderConfig holds header colors as "default", a palette index, or
// "#rrggbb".
type HeaderConfig struct {
	ActiveFg   string `toml:"active_fg"`
	ActiveBg   string `toml:"active_bg"`
	InactiveFg string `toml:"inactive_fg"`
	InactiveBg string `toml:"inactive_bg"`
	ActiveBold bool   `toml:"active_bold"`
}

// LogConfig selects the log destination.
type LogConfig struct {
	Level string `toml:"level"`
	// File is the log path. Empty discards logs.
	File string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Config{
		Shell: shell,
		Render: RenderConfig{
			Debounce:        Duration(MinDebounce),
			RefreshInterval: Duration(10 * time.Second),
			ResizePoll:      Duration(250 * time.Millisecond),
			AltScreen:       true,
		},
		Header: HeaderConfig{
			ActiveFg:   "0",
			ActiveBg:   "7",
			InactiveFg: "7",
			InactiveBg: "8",
			ActiveBold: true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/vtmux/config.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "vtmux", "config.toml")
}

// Load reads path over the defaults, applies environment overrides from
// the process environment, and validates the result. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with a custom environment lookup.
func LoadWithEnv(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, err
			}
		}
	}
	ApplyEnv(cfg, lookup)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

// Validate checks ranges and that every header color parses.
func (c *Config) Validate() error {
	if c.Shell == "" {
		return fmt.Errorf("%w: shell is empty", ErrValidationFailed)
	}
	if c.Render.Debounce.Std() < MinDebounce {
		return fmt.Errorf("%w: render.debounce %v is below %v", ErrValidationFailed, c.Render.Debounce.Std(), MinDebounce)
	}
	if c.Render.RefreshInterval.Std() <= 0 {
		return fmt.Errorf("%w: render.refresh_interval must be positive", ErrValidationFailed)
	}
	if c.Render.ResizePoll.Std() <= 0 {
		return fmt.Errorf("%w: render.resize_poll must be positive", ErrValidationFailed)
	}
	if _, _, err := c.HeaderStyles(); err != nil {
		return err
	}
	return nil
}

// HeaderStyles returns the active and inactive header styles.
func (c *Config) HeaderStyles() (active, inactive style.Style, err error) {
	colors := []struct {
		name string
		text string
		dst  *style.Color
	}{
		{"header.active_fg", c.Header.ActiveFg, &active.Fg},
		{"header.active_bg", c.Header.ActiveBg, &active.Bg},
		{"header.inactive_fg", c.Header.InactiveFg, &inactive.Fg},
		{"header.inactive_bg", c.Header.InactiveBg, &inactive.Bg},
	}
	for _, col := range colors {
		v, perr := style.ParseColor(col.text)
		if perr != nil {
			return style.Style{}, style.Style{}, fmt.Errorf("%s: %w", col.name, perr)
		}
		*col.dst = v
	}
	active.Bold = c.Header.ActiveBold
	return active, inactive, nil
}
