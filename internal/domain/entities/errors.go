package entities

import "errors"

// Domain errors. Repositories and use cases wrap these; the HTTP layer maps
// them to status codes with errors.Is.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrForbidden         = errors.New("operation not permitted")
	ErrInvalidTransition = errors.New("invalid status transition")
)
