package storage

import (
	"errors"
	"fmt"
)

// Common errors returned by storage implementations.
var (
	// ErrAlreadyInTx is returned when an operation requiring a non-transactional
	// context is attempted while already inside a transaction.
	ErrAlreadyInTx = errors.New("already in tx")
	// ErrNotInTx is returned when a transaction-specific operation is attempted
	// while not currently inside a transaction.
	ErrNotInTx = errors.New("not in tx")

	// ErrDuplicate is the sentinel wrapped by DuplicateError. Use errors.Is
	// against it, or errors.As against *DuplicateError to learn which field
	// collided.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenced is the sentinel wrapped by ReferencedError.
	ErrReferenced = errors.New("record is referenced")
)

// DuplicateError reports a uniqueness violation. Backends translate their
// native constraint errors into this type so callers never inspect driver
// error codes. Field names the colliding attribute in domain terms
// ("handle", "email", "name", "cart") when the backend can tell, and is
// empty otherwise.
type DuplicateError struct {
	// Entity is the domain entity whose constraint fired ("user", "review", ...).
	Entity string
	// Field is the colliding attribute, when known.
	Field string
}

func (e *DuplicateError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("duplicate %s %s", e.Entity, e.Field)
	}

	return fmt.Sprintf("duplicate %s", e.Entity)
}

// Unwrap lets errors.Is(err, ErrDuplicate) match.
func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// ReferencedError reports a restrict-delete violation: the row cannot be
// removed because other live rows still point at it.
type ReferencedError struct {
	// Entity is the entity that could not be deleted.
	Entity string
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("%s is referenced by other records", e.Entity)
}

// Unwrap lets errors.Is(err, ErrReferenced) match.
func (e *ReferencedError) Unwrap() error { return ErrReferenced }
