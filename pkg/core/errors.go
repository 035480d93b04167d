package core

import "errors"

// Common errors.
var (
	ErrEmptyPath     = errors.New("path cannot be empty")
	ErrNotObject     = errors.New("path segment is not an object")
	ErrNullValue     = errors.New("cannot insert null value")
	ErrIncomparable  = errors.New("values are not comparable")
	ErrMissingField  = errors.New("missing required parameter")
	ErrUnknownAction = errors.New("unknown action")
	ErrInvalidKeep   = errors.New("keep must be an integer")
)

// errMissing marks a path segment that does not exist.
var errMissing = errors.New("path segment not found")
