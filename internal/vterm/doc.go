// Package vterm adapts the vt10x emulator to the engine contract the
// bridge expects: bytes in, replies out through Read, cells by row and
// column, and a synchronous answer to the cursor position request.
//
// Nothing in this package is safe for concurrent use. Callers serialize
// access themselves; see package bridge.
package vterm
