package player

import "errors"

// Common errors for the lesson player.
var (
	ErrAlreadyAttached = errors.New("key bindings already attached")
	ErrInvalidConfig   = errors.New("invalid configuration")
)
