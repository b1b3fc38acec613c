package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID uniquely identifies a user within the system.
// It is a thin wrapper around uuid.UUID to provide type safety at the domain layer.
type UserID uuid.UUID

// User represents a registered account. The password is never stored; only
// the one-way bcrypt hash of it is kept in PasswordHash.
type User struct {
	// ID is the unique identifier of the user.
	ID UserID `json:"id"`

	// Handle is the unique login name chosen at registration.
	Handle string `json:"handle"`
	// Email is the unique contact address of the account.
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string `json:"-"`

	// FirstName and LastName are optional profile fields.
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	// AvatarURL points at the profile image, if any.
	AvatarURL string `json:"avatarUrl,omitempty"`

	// Admin marks back-office accounts. Admins may edit or delete content
	// authored by other users.
	Admin bool `json:"admin"`

	// CreatedAt is the time the account was registered.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time the account was last modified.
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt marks when the account was soft-deleted; zero value means active.
	DeletedAt time.Time `json:"-"`
}
