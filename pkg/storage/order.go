package storage

import (
	"context"
	"shop/pkg/domain"
	"time"
)

// OrderPage groups a page of orders with an optional NextCursor used for
// pagination.
type OrderPage struct {
	Orders []domain.Order
	// NextCursor is nil when there is no next page.
	NextCursor *time.Time
}

// OrderStorage defines operations for orders and their lines. Orders are
// immutable after creation except for status (and the paid timestamp), so no
// general update operation exists.
type OrderStorage interface {
	// CreateOrder inserts an order together with all of its lines and returns
	// the stored rows. Order number collisions return *DuplicateError.
	CreateOrder(ctx context.Context,
		order domain.Order,
		items []domain.OrderItem) (*domain.Order, []domain.OrderItem, error)
	// OrderCountByNumberPrefix returns how many orders carry a number with
	// the given prefix. Used for per-day sequence generation.
	OrderCountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	// UpdateOrderStatus sets the order's status, stamping paidAt when
	// provided, and returns the updated row, or nil when the order does not
	// exist. Transition legality is the caller's job.
	UpdateOrderStatus(ctx context.Context,
		id domain.OrderID,
		status domain.OrderStatus,
		paidAt *time.Time) (*domain.Order, error)
	// OrderByID fetches an order. Returns nil when not found.
	OrderByID(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	// OrderByNumber fetches an order by its human-facing number. Returns nil
	// when not found.
	OrderByNumber(ctx context.Context, number string) (*domain.Order, error)
	// OrderItems returns all lines of an order.
	OrderItems(ctx context.Context, orderID domain.OrderID) ([]domain.OrderItem, error)
	// UserOrders returns a page of the user's orders created before the
	// optional cursor time, newest first.
	UserOrders(ctx context.Context,
		userID domain.UserID,
		cursor time.Time,
		limit uint) (OrderPage, error)
}
