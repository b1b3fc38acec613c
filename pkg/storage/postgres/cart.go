package postgres

import (
	"context"
	"fmt"
	"shop/pkg/domain"
	"shop/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	cartsTable     = "carts"
	cartItemsTable = "cart_items"
)

func (p *PgSQL) CreateCart(ctx context.Context, cart domain.Cart) (*domain.Cart, error) {
	var row PgCart
	row.FromDomain(cart)

	var result PgCart
	found, err := p.Builder.Insert(cartsTable).
		Rows(row).
		Returning(&PgCart{}).
		Executor().ScanStructContext(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("could not store cart into pg: %w", mapUniqueViolation(err, "cart"))
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", cartsTable)
	}

	return result.ToDomain(), nil
}

func (p *PgSQL) CartByUser(ctx context.Context, userID domain.UserID) (*domain.Cart, error) {
	return p.cartBy(ctx, goqu.I("user_id").Eq(uuid.UUID(userID)))
}

func (p *PgSQL) CartByID(ctx context.Context, id domain.CartID) (*domain.Cart, error) {
	return p.cartBy(ctx, goqu.I("id").Eq(uuid.UUID(id)))
}

func (p *PgSQL) cartBy(ctx context.Context, cond goqu.Expression) (*domain.Cart, error) {
	var row PgCart
	found, err := p.Builder.From(cartsTable).
		Where(cond, goqu.I("deleted_at").IsNull()).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch cart: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) TouchCart(ctx context.Context, id domain.CartID) error {
	_, err := p.Builder.Update(cartsTable).
		Set(goqu.Record{
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not touch cart in pg: %w", err)
	}

	return nil
}

// RetireCart performs a soft delete, freeing the partial unique index so the
// user can start a fresh cart.
func (p *PgSQL) RetireCart(ctx context.Context, id domain.CartID) (bool, error) {
	res, err := p.Builder.Update(cartsTable).
		Set(goqu.Record{
			"deleted_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not retire cart in pg: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not get affected rows: %w", err)
	}

	return rows > 0, nil
}

// UpsertCartItem inserts the line or, when the (cart, product) pair exists,
// adds the given quantity to the existing line.
func (p *PgSQL) UpsertCartItem(ctx context.Context, item domain.CartItem) (*domain.CartItem, error) {
	var row PgCartItem
	row.FromDomain(item)

	var result PgCartItem
	found, err := p.Builder.Insert(cartItemsTable).
		Rows(row).
		OnConflict(goqu.DoUpdate("cart_id, product_id", goqu.Record{
			"quantity": goqu.L("cart_items.quantity + excluded.quantity"),
		})).
		Returning(&PgCartItem{}).
		Executor().ScanStructContext(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("could not upsert cart item into pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("upsert into %s returned no row", cartItemsTable)
	}

	return result.ToDomain(), nil
}

func (p *PgSQL) SetCartItemQuantity(ctx context.Context,
	cartID domain.CartID,
	productID domain.ProductID,
	qty int) (*domain.CartItem, error) {
	var row PgCartItem
	found, err := p.Builder.Update(cartItemsTable).
		Set(goqu.Record{
			"quantity": qty,
		}).Where(
		goqu.I("cart_id").Eq(uuid.UUID(cartID)),
		goqu.I("product_id").Eq(uuid.UUID(productID)),
	).Returning(&PgCartItem{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update cart item in pg: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) DeleteCartItem(ctx context.Context,
	cartID domain.CartID,
	productID domain.ProductID) (bool, error) {
	res, err := p.Builder.Delete(cartItemsTable).
		Where(
			goqu.I("cart_id").Eq(uuid.UUID(cartID)),
			goqu.I("product_id").Eq(uuid.UUID(productID)),
		).Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete cart item in pg: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not get affected rows: %w", err)
	}

	return rows > 0, nil
}

func (p *PgSQL) ClearCart(ctx context.Context, cartID domain.CartID) error {
	_, err := p.Builder.Delete(cartItemsTable).
		Where(goqu.I("cart_id").Eq(uuid.UUID(cartID))).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not clear cart in pg: %w", err)
	}

	return nil
}

// CartLines fetches a cart's items and the live products they reference.
// Items whose product has been soft-deleted meanwhile come back without a
// product match; callers treat those lines as unavailable.
func (p *PgSQL) CartLines(ctx context.Context, cartID domain.CartID) ([]storage.CartLine, error) {
	var items []PgCartItem
	if err := p.Builder.From(cartItemsTable).
		Where(goqu.I("cart_id").Eq(uuid.UUID(cartID))).
		Order(goqu.I("added_at").Asc()).
		Executor().ScanStructsContext(ctx, &items); err != nil {
		return nil, fmt.Errorf("could not fetch cart items from pg: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	productIDs := make([]uuid.UUID, 0, len(items))
	for i := range items {
		productIDs = append(productIDs, items[i].ProductID)
	}

	var products []PgProduct
	if err := p.Builder.From(productsTable).
		Where(
			goqu.I("id").In(productIDs),
			goqu.I("deleted_at").IsNull(),
		).
		Executor().ScanStructsContext(ctx, &products); err != nil {
		return nil, fmt.Errorf("could not fetch cart products from pg: %w", err)
	}

	byID := make(map[uuid.UUID]PgProduct, len(products))
	for i := range products {
		byID[products[i].ID] = products[i]
	}

	lines := make([]storage.CartLine, 0, len(items))
	for i := range items {
		line := storage.CartLine{Item: *items[i].ToDomain()}
		if product, ok := byID[items[i].ProductID]; ok {
			line.Product = *product.ToDomain()
		}
		lines = append(lines, line)
	}

	return lines, nil
}
