package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Validation errors raised before a record reaches storage.
	ErrInvalidRecord = errors.New("invalid record")
)
