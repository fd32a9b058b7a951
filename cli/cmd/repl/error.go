package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrNoSource     = errors.New("no settings file to edit")
	ErrNoLoader     = errors.New("no settings loader configured")
	ErrEditDeclined = errors.New("edit declined")
)
