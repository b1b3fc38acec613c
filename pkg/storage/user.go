package storage

import (
	"context"
	"shop/pkg/domain"
)

// UserUpdates describes a set of optional fields that can be applied to an
// existing user during an update. Only non-nil fields will be updated.
type UserUpdates struct {
	// Email, when provided, replaces the account email.
	Email *string
	// PasswordHash, when provided, replaces the stored credential hash.
	PasswordHash *string
	// FirstName, LastName and AvatarURL update the profile. An empty string
	// value clears the field.
	FirstName *string
	LastName  *string
	AvatarURL *string
}

// UserStorage defines CRUD operations for user accounts. Lookups exclude
// soft-deleted rows; uniqueness violations surface as *DuplicateError.
type UserStorage interface {
	// CreateUser inserts a new user and returns the stored row (including
	// generated fields). Handle or email collisions return *DuplicateError
	// with Field set to "handle" or "email".
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	// UserByID fetches a user by ID. Returns nil when not found.
	UserByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	// UserByHandle fetches a user by handle. Returns nil when not found.
	UserByHandle(ctx context.Context, handle string) (*domain.User, error)
	// UserByEmail fetches a user by email. Returns nil when not found.
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateUser applies the provided field set to a user and returns the
	// updated row, or nil when the user does not exist.
	UpdateUser(ctx context.Context, id domain.UserID, updates UserUpdates) (*domain.User, error)
}
