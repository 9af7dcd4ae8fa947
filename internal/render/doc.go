// Package render turns successive cell grids into minimal escape-sequence
// updates for the physical terminal.
//
// Diff compares two grids row by row. Unchanged rows produce no output at
// all. Inside a dirty row, unchanged cells become cursor-forward skips and
// changed cells are grouped into runs that share one style, each run wrapped
// once in an SGR prologue and a reset. Every dirty row starts with an
// absolute cursor position because dirty rows need not be contiguous.
//
// Renderer keeps the previously drawn grid so each frame is diffed against
// what the terminal is believed to show. Invalidate forgets that grid, which
// turns the next frame into a full redraw.
package render
