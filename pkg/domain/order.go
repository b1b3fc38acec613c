package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderID uniquely identifies an order.
type OrderID uuid.UUID

// OrderItemID uniquely identifies a line inside an order.
type OrderItemID uuid.UUID

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	// OrderStatusPending indicates the order was created but not yet paid.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusPaid indicates payment completed.
	OrderStatusPaid OrderStatus = "PAID"
	// OrderStatusShipped indicates the order left the warehouse.
	OrderStatusShipped OrderStatus = "SHIPPED"
	// OrderStatusDelivered indicates the customer received the order.
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// OrderStatusCancelled indicates the order was cancelled before shipping.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// PaymentMethod is how the customer chose to pay.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

// OrderContact is the shipping and billing contact snapshot taken at
// checkout. It is frozen on the order and independent of later profile edits.
type OrderContact struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address"`
	// Payment is the chosen payment method.
	Payment PaymentMethod `json:"payment"`
}

// Order is an immutable record of a completed purchase. Everything except
// Status, PaidAt and UpdatedAt is frozen at creation; in particular Total is
// a snapshot and is never recomputed from the catalog.
type Order struct {
	// ID is the unique identifier of the order.
	ID OrderID `json:"id"`
	// UserID is the customer who placed the order.
	UserID UserID `json:"userId"`

	// Number is the human-facing unique order number, shaped
	// ORDER-yymmdd-NNNN with NNNN increasing per day.
	Number string `json:"number"`
	// Status is the current lifecycle state.
	Status OrderStatus `json:"status"`
	// Total is the sum of line subtotals at creation time.
	Total decimal.Decimal `json:"total"`

	// Contact is the shipping/billing snapshot taken at checkout.
	Contact OrderContact `json:"contact"`

	// PaidAt is set when the order transitions to PAID.
	PaidAt time.Time `json:"paidAt,omitzero"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderItem is one product line in an order. UnitPrice is the product price
// at purchase time and never changes afterwards.
type OrderItem struct {
	// ID is the unique identifier of the line.
	ID OrderItemID `json:"id"`
	// OrderID is the order the line belongs to.
	OrderID OrderID `json:"orderId"`
	// ProductID is the purchased product.
	ProductID ProductID `json:"productId"`

	// Quantity is the number of units purchased, >= 1.
	Quantity int `json:"quantity"`
	// UnitPrice is the frozen per-unit price captured at checkout.
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Subtotal returns quantity times the frozen unit price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
