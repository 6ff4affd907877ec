// Package storage holds the errors shared by every persistence backend.
package storage

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("already exists")
	ErrDiscountExhausted = errors.New("discount code can no longer be used")
)
