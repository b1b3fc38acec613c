// Package orders owns the order lifecycle after checkout: the status state
// machine, the human-facing order numbers and history lookups. Order creation
// itself happens inside the cart's checkout transaction.
package orders

import (
	"context"
	"fmt"
	"time"

	"shop/pkg/domain"
	"shop/pkg/serrors"
	"shop/pkg/storage"
)

// ErrInvalidTransition indicates a status change the state machine does not
// allow, such as shipping a cancelled order.
var ErrInvalidTransition = serrors.NewKind("INVALID_TRANSITION")

// transitions is the order status state machine. Delivered and cancelled are
// terminal.
var transitions = map[domain.OrderStatus][]domain.OrderStatus{ //nolint: gochecknoglobals
	domain.OrderStatusPending:   {domain.OrderStatusPaid, domain.OrderStatusCancelled},
	domain.OrderStatusPaid:      {domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusShipped:   {domain.OrderStatusDelivered},
	domain.OrderStatusDelivered: {},
	domain.OrderStatusCancelled: {},
}

// CanTransition reports whether the state machine allows moving an order from
// one status to another.
func CanTransition(from, to domain.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}

// numberPrefix returns the order number prefix for the given day,
// e.g. "ORDER-250131-".
func numberPrefix(at time.Time) string {
	return "ORDER-" + at.Format("060102") + "-"
}

// NumberFor generates the next order number for the given day, shaped
// ORDER-yymmdd-NNNN with NNNN increasing per day. It must run inside the same
// transaction as the order insert; the unique index on the number column
// catches the race between two concurrent checkouts counting the same prefix.
func NumberFor(ctx context.Context, s storage.OrderStorage, at time.Time) (string, error) {
	prefix := numberPrefix(at)
	count, err := s.OrderCountByNumberPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("could not count orders: %w", err)
	}

	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// orders is the concrete implementation of the Orders interface.
type orders struct {
	storage storage.Storage
}

// Transition moves an order to the next status. Moving to PAID stamps the
// paid timestamp. Illegal moves fail with ErrInvalidTransition.
func (o orders) Transition(ctx context.Context,
	id domain.OrderID,
	next domain.OrderStatus) (*domain.Order, error) {
	var updated *domain.Order
	if err := o.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		order, err := tx.OrderByID(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get order: %w", err)
		}
		if order == nil {
			return serrors.With(serrors.ErrNotFound, "order not found")
		}
		if !CanTransition(order.Status, next) {
			return serrors.With(ErrInvalidTransition,
				"order %s cannot move from %s to %s", order.Number, order.Status, next)
		}

		var paidAt *time.Time
		if next == domain.OrderStatusPaid {
			now := time.Now()
			paidAt = &now
		}

		updated, err = tx.UpdateOrderStatus(ctx, id, next, paidAt)
		if err != nil {
			return fmt.Errorf("could not update order status: %w", err)
		}
		if updated == nil {
			return serrors.With(serrors.ErrNotFound, "order not found")
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// MarkPaid is shorthand for transitioning an order to PAID.
func (o orders) MarkPaid(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return o.Transition(ctx, id, domain.OrderStatusPaid)
}

// ByID fetches an order together with its lines.
func (o orders) ByID(ctx context.Context,
	id domain.OrderID) (*domain.Order, []domain.OrderItem, error) {
	order, err := o.storage.OrderByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("could not get order: %w", err)
	}

	return o.withItems(ctx, order)
}

// ByNumber fetches an order by its human-facing number together with its
// lines.
func (o orders) ByNumber(ctx context.Context,
	number string) (*domain.Order, []domain.OrderItem, error) {
	order, err := o.storage.OrderByNumber(ctx, number)
	if err != nil {
		return nil, nil, fmt.Errorf("could not get order: %w", err)
	}

	return o.withItems(ctx, order)
}

func (o orders) withItems(ctx context.Context,
	order *domain.Order) (*domain.Order, []domain.OrderItem, error) {
	if order == nil {
		return nil, nil, serrors.With(serrors.ErrNotFound, "order not found")
	}

	items, err := o.storage.OrderItems(ctx, order.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("could not get order items: %w", err)
	}

	return order, items, nil
}

// defaultPageLimit is used when a caller does not set a page size.
const defaultPageLimit = 20

// ListByUser returns a page of the user's orders, newest first. It supports
// cursor-based pagination using an RFC3339 timestamp string and returns the
// next cursor when more results are available. A zero limit falls back to
// defaultPageLimit.
func (o orders) ListByUser(ctx context.Context,
	userID domain.UserID,
	cursor string,
	limit uint) ([]domain.Order, string, error) {
	if limit == 0 {
		limit = defaultPageLimit
	}

	var cursorTime time.Time
	if cursor != "" {
		t, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, "", serrors.Wrap(serrors.ErrInvalidInput, err, "invalid cursor")
		}
		cursorTime = t
	}

	page, err := o.storage.UserOrders(ctx, userID, cursorTime, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get user orders: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.Format(time.RFC3339Nano)
	}

	return page.Orders, next, nil
}

// New creates a new Orders service backed by the provided storage.
func New(storage storage.Storage) Orders {
	return &orders{storage: storage}
}
