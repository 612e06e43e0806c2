// Package common defines sentinel errors and small helpers shared by every
// layer of the application. Callers should use errors.Is to match the errors.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Input errors. Operations failing with these mutate nothing.
	ErrValidation = errors.New("validation error")

	// Auth errors.
	ErrUnauthorized = errors.New("invalid email or password")
	ErrForbidden    = errors.New("forbidden")
	ErrNoSession    = errors.New("not logged in")
	ErrInvalidToken = errors.New("invalid token")

	// Month configuration errors.
	ErrLocked      = errors.New("configuration locked")
	ErrInvalidCode = errors.New("invalid or expired code")
)
