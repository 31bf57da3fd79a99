package repo

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates a uniqueness violation (duplicate username).
	ErrConflict = errors.New("record already exists")
)
