package postgres

import (
	"context"
	"fmt"
	"shop/pkg/domain"
	"shop/pkg/storage"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	ordersTable     = "orders"
	orderItemsTable = "order_items"
)

// CreateOrder inserts the order row together with all of its lines. Callers
// run it inside a transaction; a failure on any line leaves nothing behind.
func (p *PgSQL) CreateOrder(ctx context.Context,
	order domain.Order,
	items []domain.OrderItem) (*domain.Order, []domain.OrderItem, error) {
	var row PgOrder
	row.FromDomain(order)

	var storedOrder PgOrder
	found, err := p.Builder.Insert(ordersTable).
		Rows(row).
		Returning(&PgOrder{}).
		Executor().ScanStructContext(ctx, &storedOrder)
	if err != nil {
		return nil, nil, fmt.Errorf("could not store order into pg: %w", mapUniqueViolation(err, "order"))
	}
	if !found {
		return nil, nil, fmt.Errorf("insert into %s returned no row", ordersTable)
	}

	if len(items) == 0 {
		return storedOrder.ToDomain(), nil, nil
	}

	pgItems := make([]PgOrderItem, len(items))
	for i := range items {
		pgItems[i].FromDomain(items[i])
		pgItems[i].OrderID = storedOrder.ID
	}

	var storedItems []PgOrderItem
	if err := p.Builder.Insert(orderItemsTable).
		Rows(pgItems).
		Returning(&PgOrderItem{}).
		Executor().ScanStructsContext(ctx, &storedItems); err != nil {
		return nil, nil, fmt.Errorf("could not store order items into pg: %w", err)
	}

	return storedOrder.ToDomain(), pgOrderItemsToDomain(storedItems), nil
}

func (p *PgSQL) OrderCountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if _, err := p.Builder.From(ordersTable).
		Select(goqu.COUNT("*")).
		Where(goqu.I("number").Like(prefix + "%")).
		Executor().ScanValContext(ctx, &count); err != nil {
		return 0, fmt.Errorf("could not count orders by number prefix: %w", err)
	}

	return count, nil
}

// UpdateOrderStatus sets the new status and stamps paid_at when provided.
// Legality of the transition is checked by the orders service before calling.
func (p *PgSQL) UpdateOrderStatus(ctx context.Context,
	id domain.OrderID,
	status domain.OrderStatus,
	paidAt *time.Time) (*domain.Order, error) {
	rec := goqu.Record{
		"status":     string(status),
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
	}
	if paidAt != nil {
		rec["paid_at"] = *paidAt
	}

	var row PgOrder
	found, err := p.Builder.Update(ordersTable).
		Set(rec).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
	).Returning(&PgOrder{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update order status in pg: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) OrderByID(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return p.orderBy(ctx, goqu.I("id").Eq(uuid.UUID(id)))
}

func (p *PgSQL) OrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return p.orderBy(ctx, goqu.I("number").Eq(number))
}

func (p *PgSQL) orderBy(ctx context.Context, cond goqu.Expression) (*domain.Order, error) {
	var row PgOrder
	found, err := p.Builder.From(ordersTable).
		Where(cond).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch order: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) OrderItems(ctx context.Context, orderID domain.OrderID) ([]domain.OrderItem, error) {
	var rows []PgOrderItem
	if err := p.Builder.From(orderItemsTable).
		Where(goqu.I("order_id").Eq(uuid.UUID(orderID))).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch order items from pg: %w", err)
	}

	return pgOrderItemsToDomain(rows), nil
}

// UserOrders returns a page of the user's orders ordered by created_at DESC,
// id DESC, fetching one extra row to detect whether a next page exists.
func (p *PgSQL) UserOrders(ctx context.Context,
	userID domain.UserID,
	cursor time.Time,
	limit uint) (storage.OrderPage, error) {
	w := []goqu.Expression{
		goqu.I("user_id").Eq(uuid.UUID(userID)),
	}
	if !cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(cursor))
	}

	fetch := limit + 1
	var rows []PgOrder
	if err := p.Builder.From(ordersTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(fetch).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.OrderPage{}, fmt.Errorf("could not fetch user orders from pg: %w", err)
	}

	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		rows = rows[:limit]
		if len(rows) > 0 {
			nextCursor = &rows[len(rows)-1].CreatedAt
		}
	}

	return storage.OrderPage{
		Orders:     pgOrdersToDomain(rows),
		NextCursor: nextCursor,
	}, nil
}
