package reviews

import (
	"context"
	"shop/pkg/domain"
)

//go:generate mockgen -package mockreviews -source=interface.go -destination=mock/mockreviews.go *
type Reviews interface {
	Submit(ctx context.Context,
		userID domain.UserID,
		productID domain.ProductID,
		rating int,
		body string) (*domain.Review, error)
	Edit(ctx context.Context,
		actor *domain.User,
		id domain.ReviewID,
		rating int,
		body string) (*domain.Review, error)
	Delete(ctx context.Context, actor *domain.User, id domain.ReviewID) error
	ListByProduct(ctx context.Context,
		productID domain.ProductID,
		cursor string,
		limit uint) ([]domain.Review, string, error)
}
