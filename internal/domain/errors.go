package domain

import "errors"

// Sentinel errors shared by repositories and services. Callers wrap them with
// context using fmt.Errorf("...: %w", err); the HTTP layer maps them to status
// codes with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalid         = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrVersionMismatch = errors.New("modified concurrently")
)
