package orders

import (
	"context"
	"shop/pkg/domain"
)

//go:generate mockgen -package mockorders -source=interface.go -destination=mock/mockorders.go *
type Orders interface {
	Transition(ctx context.Context, id domain.OrderID, next domain.OrderStatus) (*domain.Order, error)
	MarkPaid(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	ByID(ctx context.Context, id domain.OrderID) (*domain.Order, []domain.OrderItem, error)
	ByNumber(ctx context.Context, number string) (*domain.Order, []domain.OrderItem, error)
	ListByUser(ctx context.Context,
		userID domain.UserID,
		cursor string,
		limit uint) ([]domain.Order, string, error)
}
