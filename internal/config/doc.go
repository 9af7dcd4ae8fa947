// Package config loads vtmux settings.
//
// Settings come from a TOML file and are then overridden by VTMUX_*
// environment variables. The package also parses pane geometry, lays
// panes out across the window, and watches the file for header theme
// changes.
package config
