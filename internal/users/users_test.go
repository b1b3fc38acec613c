package users

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/crypto/bcrypt"

	"shop/pkg/domain"
	"shop/pkg/metrics"
	"shop/pkg/serrors"
	"shop/pkg/storage/storagetest"
)

func newService(t *testing.T, options Options) (Users, *storagetest.Fake) {
	t.Helper()

	if options.BcryptCost == 0 {
		options.BcryptCost = bcrypt.MinCost
	}
	shopMetrics, err := metrics.NewShop(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	fake := storagetest.New()

	return New(fake, options, shopMetrics), fake
}

func testKeyPEM(t *testing.T) (string, *rsa.PublicKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}

	return string(pem.EncodeToMemory(block)), &key.PublicKey
}

func TestRegister(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice42", "alice@example.com", "correct horse", Profile{
		FirstName: "Alice",
	})
	require.NoError(t, err)
	require.NotEqual(t, domain.UserID(uuid.Nil), user.ID)
	require.Equal(t, "alice42", user.Handle)
	require.Equal(t, "Alice", user.FirstName)
	require.NotEqual(t, "correct horse", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))
}

func TestRegisterDuplicateHandle(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice42", "alice@example.com", "correct horse", Profile{})
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice42", "other@example.com", "correct horse", Profile{})
	require.ErrorIs(t, err, ErrDuplicateHandle)

	_, err = svc.Register(ctx, "bob7", "alice@example.com", "correct horse", Profile{})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterInvalidInput(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()

	_, err := svc.Register(ctx, "x", "alice@example.com", "correct horse", Profile{})
	require.ErrorIs(t, err, serrors.ErrInvalidInput)

	_, err = svc.Register(ctx, "alice42", "not-an-email", "correct horse", Profile{})
	require.ErrorIs(t, err, serrors.ErrInvalidInput)

	_, err = svc.Register(ctx, "alice42", "alice@example.com", "short", Profile{})
	require.ErrorIs(t, err, serrors.ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice42", "alice@example.com", "correct horse", Profile{})
	require.NoError(t, err)

	byHandle, err := svc.Authenticate(ctx, "alice42", "correct horse")
	require.NoError(t, err)
	require.Equal(t, registered.ID, byHandle.ID)

	byEmail, err := svc.Authenticate(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, registered.ID, byEmail.ID)

	_, err = svc.Authenticate(ctx, "alice42", "wrong password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown accounts fail the same way as wrong passwords
	_, err = svc.Authenticate(ctx, "nobody", "correct horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueToken(t *testing.T) {
	keyPEM, pub := testKeyPEM(t)
	svc, _ := newService(t, Options{TokenPrivateKey: keyPEM, TokenTTL: time.Hour})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice42", "alice@example.com", "correct horse", Profile{})
	require.NoError(t, err)

	signed, err := svc.IssueToken(ctx, user, 0)
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	require.True(t, ok)
	require.Equal(t, uuid.UUID(user.ID).String(), claims.Subject)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice42", "alice@example.com", "correct horse", Profile{
		FirstName: "Alice",
		LastName:  "Cooper",
	})
	require.NoError(t, err)

	last := "Chains"
	avatar := "https://img.example.com/alice.png"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdates{
		LastName:  &last,
		AvatarURL: &avatar,
	})
	require.NoError(t, err)
	require.Equal(t, "Alice", updated.FirstName)
	require.Equal(t, "Chains", updated.LastName)
	require.Equal(t, avatar, updated.AvatarURL)

	_, err = svc.UpdateProfile(ctx, domain.UserID(uuid.New()), ProfileUpdates{LastName: &last})
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice42", "alice@example.com", "correct horse", Profile{})
	require.NoError(t, err)
	bob, err := svc.Register(ctx, "bob7", "bob@example.com", "correct horse", Profile{})
	require.NoError(t, err)

	taken := "alice@example.com"
	_, err = svc.UpdateProfile(ctx, bob.ID, ProfileUpdates{Email: &taken})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLookups(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice42", "alice@example.com", "correct horse", Profile{})
	require.NoError(t, err)

	byID, err := svc.ByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Handle, byID.Handle)

	byHandle, err := svc.ByHandle(ctx, "alice42")
	require.NoError(t, err)
	require.Equal(t, user.ID, byHandle.ID)

	_, err = svc.ByID(ctx, domain.UserID(uuid.New()))
	require.ErrorIs(t, err, serrors.ErrNotFound)

	_, err = svc.ByHandle(ctx, "nobody")
	require.ErrorIs(t, err, serrors.ErrNotFound)
}
