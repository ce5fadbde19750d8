// Package sentinel holds the errors the storage layer speaks. Stores return
// these (wrapped with %w where context helps) and services translate them
// into domain errors; nothing above the service layer should see them.
package sentinel

import "errors"

var (
	// ErrNotFound: the entity is not in the store.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a uniqueness rule rejected the write. Under concurrency
	// exactly one caller succeeds and the rest get this.
	ErrConflict = errors.New("conflict")

	// ErrExpired: the entity's lifetime has already passed.
	ErrExpired = errors.New("expired")

	// ErrAlreadyUsed: a one-shot mutation was applied before. The stored
	// value is never overwritten.
	ErrAlreadyUsed = errors.New("already used")
)
