package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shop/internal/config"
	"shop/internal/forms"
	"shop/pkg/domain"
	"shop/pkg/metrics"
	"shop/pkg/serrors"
	"shop/pkg/storage"
)

// Account-level failure kinds. They are semantic sentinels so callers can
// match them with errors.Is without inspecting messages.
var (
	// ErrDuplicateHandle indicates the requested handle is already taken.
	ErrDuplicateHandle = serrors.NewKind("DUPLICATE_HANDLE")
	// ErrDuplicateEmail indicates the email is already bound to an account.
	ErrDuplicateEmail = serrors.NewKind("DUPLICATE_EMAIL")
	// ErrInvalidCredentials indicates a failed login. It deliberately does not
	// distinguish an unknown account from a wrong password.
	ErrInvalidCredentials = serrors.NewKind("INVALID_CREDENTIALS")
)

// dummyHash is compared against when the account does not exist, so that a
// failed login costs roughly the same whether or not the handle is known.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Options configure credential hashing and token issuance. These settings are
// typically derived from application configuration.
type Options struct {
	// BcryptCost is the cost factor used when hashing passwords.
	BcryptCost int
	// TokenPrivateKey is a PEM-encoded RSA private key used to sign tokens.
	TokenPrivateKey string
	// TokenTTL is the default validity of issued tokens, used when the caller
	// does not specify one.
	TokenTTL time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		BcryptCost:      cfg.Auth.BcryptCost,
		TokenPrivateKey: cfg.Auth.TokenPrivateKey,
		TokenTTL:        cfg.Auth.TokenTTL,
	}
}

// Profile holds the optional descriptive fields of an account.
type Profile struct {
	FirstName string
	LastName  string
	AvatarURL string
}

// ProfileUpdates describes a partial profile update. Only non-nil fields are
// applied; an empty string value clears the field.
type ProfileUpdates struct {
	Email     *string
	FirstName *string
	LastName  *string
	AvatarURL *string
}

// users is the concrete implementation of the Users interface.
type users struct {
	options Options
	storage storage.Storage
	metrics *metrics.Shop
}

// Register creates a new account with a bcrypt-hashed password. Handle and
// email collisions surface as ErrDuplicateHandle / ErrDuplicateEmail.
func (u users) Register(ctx context.Context,
	handle, email, password string,
	profile Profile) (*domain.User, error) {
	form := forms.RegisterForm{
		Handle:    handle,
		Email:     email,
		Password:  password,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		AvatarURL: profile.AvatarURL,
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.options.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	stored, err := u.storage.CreateUser(ctx, domain.User{
		Handle:       handle,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		AvatarURL:    profile.AvatarURL,
	})
	if err != nil {
		var dup *storage.DuplicateError
		if errors.As(err, &dup) {
			switch dup.Field {
			case "handle":
				return nil, serrors.Wrap(ErrDuplicateHandle, err, "handle %q is taken", handle)
			case "email":
				return nil, serrors.Wrap(ErrDuplicateEmail, err, "email %q is taken", email)
			}
		}

		return nil, fmt.Errorf("could not create user: %w", err)
	}

	u.metrics.Registrations.Add(ctx, 1)

	return stored, nil
}

// Authenticate verifies the given credentials and returns the matching
// account. The identifier may be either a handle or an email address.
func (u users) Authenticate(ctx context.Context, handleOrEmail, password string) (*domain.User, error) {
	var user *domain.User
	var err error
	if strings.Contains(handleOrEmail, "@") {
		user, err = u.storage.UserByEmail(ctx, handleOrEmail)
	} else {
		user, err = u.storage.UserByHandle(ctx, handleOrEmail)
	}
	if err != nil {
		return nil, fmt.Errorf("could not look up user: %w", err)
	}

	storedHash := dummyHash
	if user != nil {
		storedHash = user.PasswordHash
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)); err != nil || user == nil {
		return nil, serrors.With(ErrInvalidCredentials, "invalid credentials")
	}

	return user, nil
}

// IssueToken signs an RS256 token for the given account. A non-positive TTL
// falls back to the configured default.
func (u users) IssueToken(_ context.Context, user *domain.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = u.options.TokenTTL
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(u.options.TokenPrivateKey))
	if err != nil {
		return "", fmt.Errorf("could not parse RSA private key: %w", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   uuid.UUID(user.ID).String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}

	return signed, nil
}

// UpdateProfile applies a partial profile update and returns the updated
// account. It returns a not-found error when the account does not exist, and
// ErrDuplicateEmail when a new email collides with another account.
func (u users) UpdateProfile(ctx context.Context,
	id domain.UserID,
	updates ProfileUpdates) (*domain.User, error) {
	res, err := u.storage.UpdateUser(ctx, id, storage.UserUpdates{
		Email:     updates.Email,
		FirstName: updates.FirstName,
		LastName:  updates.LastName,
		AvatarURL: updates.AvatarURL,
	})
	if err != nil {
		var dup *storage.DuplicateError
		if errors.As(err, &dup) && dup.Field == "email" {
			return nil, serrors.Wrap(ErrDuplicateEmail, err, "email is taken")
		}

		return nil, fmt.Errorf("could not update user: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "user not found")
	}

	return res, nil
}

// ByID fetches a single account by ID. It returns a not-found error when no
// matching account exists.
func (u users) ByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	res, err := u.storage.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get user: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "user not found")
	}

	return res, nil
}

// ByHandle fetches a single account by handle.
func (u users) ByHandle(ctx context.Context, handle string) (*domain.User, error) {
	res, err := u.storage.UserByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("could not get user: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "user not found")
	}

	return res, nil
}

// New creates a new Users service backed by the provided storage.
func New(storage storage.Storage, options Options, shopMetrics *metrics.Shop) Users {
	return &users{
		options: options,
		storage: storage,
		metrics: shopMetrics,
	}
}
