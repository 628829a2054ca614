package engine

import "errors"

var (
	// ErrClosed is returned for calls made after the engine is closed.
	ErrClosed = errors.New("engine: closed")
)
