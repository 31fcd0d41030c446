// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound reports an absent document slot. On first run this is the
	// normal state, not a failure.
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
