package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"shop/internal/forms"
	"shop/pkg/domain"
)

// Line is one cart entry joined with its product. Subtotal uses the current
// (live) product price; orders freeze prices, carts never do.
type Line struct {
	Item    domain.CartItem
	Product domain.Product
	// Available is false when the product was removed from the live catalog
	// after it was added to the cart. Unavailable lines do not count towards
	// the total and fail checkout.
	Available bool
	Subtotal  decimal.Decimal
}

// Summary is the full state of a user's cart as shown to them: the lines,
// the total number of units and the running total over available lines.
type Summary struct {
	Cart      domain.Cart
	Lines     []Line
	ItemCount int
	Total     decimal.Decimal
}

//go:generate mockgen -package mockcart -source=interface.go -destination=mock/mockcart.go *
type Cart interface {
	AddItem(ctx context.Context,
		userID domain.UserID,
		productID domain.ProductID,
		qty int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context,
		userID domain.UserID,
		productID domain.ProductID,
		qty int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, userID domain.UserID, productID domain.ProductID) error
	Get(ctx context.Context, userID domain.UserID) (*Summary, error)
	Clear(ctx context.Context, userID domain.UserID) error
	Checkout(ctx context.Context,
		userID domain.UserID,
		contact forms.CheckoutForm) (*domain.Order, []domain.OrderItem, error)
}
