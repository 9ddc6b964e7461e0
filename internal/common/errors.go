// Package common defines shared constants and sentinel errors used across
// the client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrValidation       = errors.New("validation error")

	// Sync setup errors.
	ErrAuthMismatch = errors.New("auth mismatch")
	ErrTokenExpired = errors.New("token expired")

	// Reconciler errors.
	ErrConsistency = errors.New("local and remote state diverged")
	ErrPartialSync = errors.New("partial sync failure")
)
