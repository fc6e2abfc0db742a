package domain

import "errors"

var (
	// ErrInvalidRequest marks caller input that cannot be analysed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
)
