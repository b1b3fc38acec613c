package storage

import (
	"context"
	"shop/pkg/domain"
)

// CartLine pairs a cart item with the product it references, as produced by
// the join in CartLines. The product carries its current (live) price.
type CartLine struct {
	Item    domain.CartItem
	Product domain.Product
}

// CartStorage defines operations for carts and their items. Cart reads
// exclude retired (soft-deleted) carts.
type CartStorage interface {
	// CreateCart inserts a new live cart for a user. A second live cart for
	// the same user returns *DuplicateError with Field "cart".
	CreateCart(ctx context.Context, cart domain.Cart) (*domain.Cart, error)
	// CartByUser fetches the user's live cart. Returns nil when none exists.
	CartByUser(ctx context.Context, userID domain.UserID) (*domain.Cart, error)
	// CartByID fetches a live cart by ID. Returns nil when not found.
	CartByID(ctx context.Context, id domain.CartID) (*domain.Cart, error)
	// TouchCart bumps the cart's updated_at so the abandonment reaper sees
	// recent activity.
	TouchCart(ctx context.Context, id domain.CartID) error
	// RetireCart soft-deletes a cart (checkout or abandonment). Returns false
	// when the cart was not live.
	RetireCart(ctx context.Context, id domain.CartID) (bool, error)

	// UpsertCartItem inserts a cart line or, when the (cart, product) pair
	// already exists, increments its quantity by the given item's quantity.
	// The stored row is returned.
	UpsertCartItem(ctx context.Context, item domain.CartItem) (*domain.CartItem, error)
	// SetCartItemQuantity replaces the quantity of an existing line and
	// returns the updated row, or nil when the line does not exist.
	SetCartItemQuantity(ctx context.Context,
		cartID domain.CartID,
		productID domain.ProductID,
		qty int) (*domain.CartItem, error)
	// DeleteCartItem removes a line. Returns false when it did not exist.
	DeleteCartItem(ctx context.Context, cartID domain.CartID, productID domain.ProductID) (bool, error)
	// ClearCart removes all lines of a cart.
	ClearCart(ctx context.Context, cartID domain.CartID) error
	// CartLines returns the cart's items joined with their products, ordered
	// by the time they were added.
	CartLines(ctx context.Context, cartID domain.CartID) ([]CartLine, error)
}
