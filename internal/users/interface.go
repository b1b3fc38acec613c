package users

import (
	"context"
	"shop/pkg/domain"
	"time"
)

//go:generate mockgen -package mockusers -source=interface.go -destination=mock/mockusers.go *
type Users interface {
	Register(ctx context.Context, handle, email, password string, profile Profile) (*domain.User, error)
	Authenticate(ctx context.Context, handleOrEmail, password string) (*domain.User, error)
	IssueToken(ctx context.Context, user *domain.User, ttl time.Duration) (string, error)
	UpdateProfile(ctx context.Context, id domain.UserID, updates ProfileUpdates) (*domain.User, error)
	ByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	ByHandle(ctx context.Context, handle string) (*domain.User, error)
}
