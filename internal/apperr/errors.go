// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrInvalid marks input that failed task schema validation.
	// Handlers map it to a 400 response.
	ErrInvalid = errors.New("invalid input")
)
