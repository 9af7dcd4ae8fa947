package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrMalformedGeometry indicates geometry text that is not WxH with
	// positive integers.
	ErrMalformedGeometry = errors.New("malformed geometry")

	// ErrValidationFailed indicates a setting outside its allowed range.
	ErrValidationFailed = errors.New("validation failed")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Err is the decoder error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
