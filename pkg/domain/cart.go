package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartID uniquely identifies a shopping cart.
type CartID uuid.UUID

// CartItemID uniquely identifies a line inside a cart.
type CartItemID uuid.UUID

// Cart is a user's unsubmitted collection of intended purchases. A user has
// at most one live cart; checkout or abandonment retires it.
type Cart struct {
	// ID is the unique identifier of the cart.
	ID CartID `json:"id"`
	// UserID is the owner of the cart.
	UserID UserID `json:"userId"`

	// CreatedAt is the time of the first add-to-cart.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is bumped on every item mutation; the reaper uses it to
	// detect abandoned carts.
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt marks when the cart was retired (checkout or abandonment).
	DeletedAt time.Time `json:"-"`
}

// CartItem is one product line in a cart. Quantity is always at least 1 and
// the (cart, product) pair is unique.
type CartItem struct {
	// ID is the unique identifier of the line.
	ID CartItemID `json:"id"`
	// CartID is the cart the line belongs to.
	CartID CartID `json:"cartId"`
	// ProductID is the product being purchased.
	ProductID ProductID `json:"productId"`
	// Quantity is the number of units, >= 1.
	Quantity int `json:"quantity"`

	// AddedAt is the time the line was first created.
	AddedAt time.Time `json:"addedAt"`
}
