package style

import "errors"

// ErrUnsupportedColor is returned for a color that is neither the terminal
// default, an indexed color, nor an RGB triple. It is a fatal condition:
// callers must not substitute a fallback color.
var ErrUnsupportedColor = errors.New("unsupported color representation")
