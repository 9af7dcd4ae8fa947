// Package style maps abstract cell styles to SGR parameter codes.
//
// A Color is a tagged union: the terminal default, a palette index, or an
// RGB triple. RGB colors are quantized onto the 6x6x6 xterm color cube using
// a nearest-level table built once by NewMapper; the table is never mutated
// afterwards, so a single Mapper may be shared by every pane.
package style
