package render

import "errors"

// ErrSizeMismatch is returned when a grid does not match the renderer's
// fixed dimensions.
var ErrSizeMismatch = errors.New("grid size does not match renderer")
