package postgres

import (
	"context"
	"fmt"
	"shop/pkg/domain"
	"shop/pkg/storage"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
)

const (
	categoriesTable = "categories"
	brandsTable     = "brands"
	productsTable   = "products"
)

func (p *PgSQL) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	var row PgCategory
	row.FromDomain(category)

	var result PgCategory
	found, err := p.Builder.Insert(categoriesTable).
		Rows(row).
		Returning(&PgCategory{}).
		Executor().ScanStructContext(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("could not store category into pg: %w", mapUniqueViolation(err, "category"))
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", categoriesTable)
	}

	return result.ToDomain(), nil
}

func (p *PgSQL) UpdateCategory(ctx context.Context,
	id domain.CategoryID,
	updates storage.CategoryUpdates) (*domain.Category, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
	}
	if updates.Name != nil {
		rec["name"] = *updates.Name
	}
	if updates.Description != nil {
		rec["description"] = *updates.Description
	}

	var row PgCategory
	found, err := p.Builder.Update(categoriesTable).
		Set(rec).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
	).Returning(&PgCategory{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update category in pg: %w", mapUniqueViolation(err, "category"))
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) SetCategoryParent(ctx context.Context,
	id domain.CategoryID,
	parentID *domain.CategoryID) (*domain.Category, error) {
	var parent uuid.NullUUID
	if parentID != nil {
		parent = uuid.NullUUID{UUID: uuid.UUID(*parentID), Valid: true}
	}

	var row PgCategory
	found, err := p.Builder.Update(categoriesTable).
		Set(goqu.Record{
			"parent_id":  parent,
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
	).Returning(&PgCategory{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not reparent category in pg: %w", mapUniqueViolation(err, "category"))
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) DeleteCategory(ctx context.Context, id domain.CategoryID) (bool, error) {
	res, err := p.Builder.Delete(categoriesTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete category in pg: %w", mapRestrictViolation(err, "category"))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not get affected rows: %w", err)
	}

	return rows > 0, nil
}

func (p *PgSQL) CategoryByID(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	var row PgCategory
	found, err := p.Builder.From(categoriesTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch category: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

// CategoryByIDForUpdate locks the category row for the rest of the
// transaction so concurrent reparents serialize on the chains they read.
func (p *PgSQL) CategoryByIDForUpdate(ctx context.Context,
	id domain.CategoryID) (*domain.Category, error) {
	var row PgCategory
	found, err := p.Builder.From(categoriesTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		ForUpdate(exp.Wait).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch category: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) Categories(ctx context.Context) ([]domain.Category, error) {
	var rows []PgCategory
	if err := p.Builder.From(categoriesTable).
		Order(goqu.I("name").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch categories: %w", err)
	}

	out := make([]domain.Category, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out, nil
}

func (p *PgSQL) ChildCategoryCount(ctx context.Context, id domain.CategoryID) (int64, error) {
	var count int64
	if _, err := p.Builder.From(categoriesTable).
		Select(goqu.COUNT("*")).
		Where(goqu.I("parent_id").Eq(uuid.UUID(id))).
		Executor().ScanValContext(ctx, &count); err != nil {
		return 0, fmt.Errorf("could not count child categories: %w", err)
	}

	return count, nil
}

func (p *PgSQL) CreateBrand(ctx context.Context, brand domain.Brand) (*domain.Brand, error) {
	var row PgBrand
	row.FromDomain(brand)

	var result PgBrand
	found, err := p.Builder.Insert(brandsTable).
		Rows(row).
		Returning(&PgBrand{}).
		Executor().ScanStructContext(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("could not store brand into pg: %w", mapUniqueViolation(err, "brand"))
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", brandsTable)
	}

	return result.ToDomain(), nil
}

func (p *PgSQL) RenameBrand(ctx context.Context, id domain.BrandID, name string) (*domain.Brand, error) {
	var row PgBrand
	found, err := p.Builder.Update(brandsTable).
		Set(goqu.Record{
			"name":       name,
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
	).Returning(&PgBrand{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not rename brand in pg: %w", mapUniqueViolation(err, "brand"))
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) DeleteBrand(ctx context.Context, id domain.BrandID) (bool, error) {
	res, err := p.Builder.Delete(brandsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete brand in pg: %w", mapRestrictViolation(err, "brand"))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not get affected rows: %w", err)
	}

	return rows > 0, nil
}

func (p *PgSQL) BrandByID(ctx context.Context, id domain.BrandID) (*domain.Brand, error) {
	var row PgBrand
	found, err := p.Builder.From(brandsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch brand: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) Brands(ctx context.Context) ([]domain.Brand, error) {
	var rows []PgBrand
	if err := p.Builder.From(brandsTable).
		Order(goqu.I("name").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch brands: %w", err)
	}

	out := make([]domain.Brand, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out, nil
}

func (p *PgSQL) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	var row PgProduct
	row.FromDomain(product)

	var result PgProduct
	found, err := p.Builder.Insert(productsTable).
		Rows(row).
		Returning(&PgProduct{}).
		Executor().ScanStructContext(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("could not store product into pg: %w", mapUniqueViolation(err, "product"))
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", productsTable)
	}

	return result.ToDomain(), nil
}

// UpdateProduct applies the provided field set to a live product and returns
// the updated row. Only provided fields are changed; updated_at is set
// automatically.
func (p *PgSQL) UpdateProduct(ctx context.Context,
	id domain.ProductID,
	updates storage.ProductUpdates) (*domain.Product, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
	}
	if updates.Name != nil {
		rec["name"] = *updates.Name
	}
	if updates.Description != nil {
		rec["description"] = *updates.Description
	}
	if updates.Price != nil {
		rec["price"] = *updates.Price
	}
	if updates.Stock != nil {
		rec["stock"] = *updates.Stock
	}
	if updates.CategoryID != nil {
		rec["category_id"] = uuid.UUID(*updates.CategoryID)
	}
	if updates.BrandID != nil {
		rec["brand_id"] = uuid.UUID(*updates.BrandID)
	}
	if updates.RatingAvg != nil {
		rec["rating_avg"] = *updates.RatingAvg
	}
	if updates.RatingCount != nil {
		rec["rating_count"] = *updates.RatingCount
	}

	var row PgProduct
	found, err := p.Builder.Update(productsTable).
		Set(rec).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgProduct{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update product in pg: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

// DecrementStock applies a conditional decrement: the update only matches the
// row when enough stock remains, so concurrent checkouts of the same product
// can never drive stock below zero.
func (p *PgSQL) DecrementStock(ctx context.Context, id domain.ProductID, qty int) (bool, error) {
	res, err := p.Builder.Update(productsTable).
		Set(goqu.Record{
			"stock":      goqu.L("stock - ?", qty),
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
		goqu.I("stock").Gte(qty),
	).Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not decrement stock in pg: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not get affected rows: %w", err)
	}

	return rows > 0, nil
}

func (p *PgSQL) IncrementStock(ctx context.Context, id domain.ProductID, qty int) error {
	_, err := p.Builder.Update(productsTable).
		Set(goqu.Record{
			"stock":      goqu.L("stock + ?", qty),
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not increment stock in pg: %w", err)
	}

	return nil
}

// SoftDeleteProduct hides the product from the live catalog by setting the
// deleted_at timestamp, returning the deleted row.
func (p *PgSQL) SoftDeleteProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	var row PgProduct
	found, err := p.Builder.Update(productsTable).
		Set(goqu.Record{
			"deleted_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgProduct{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not soft delete product in pg: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) DeleteProduct(ctx context.Context, id domain.ProductID) (bool, error) {
	res, err := p.Builder.Delete(productsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete product in pg: %w", mapRestrictViolation(err, "product"))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not get affected rows: %w", err)
	}

	return rows > 0, nil
}

func (p *PgSQL) ProductByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	var row PgProduct
	found, err := p.Builder.From(productsTable).
		Where(
			goqu.I("id").Eq(uuid.UUID(id)),
			goqu.I("deleted_at").IsNull(),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch product: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

// Products returns a filtered product listing ordered by created_at DESC,
// id DESC, with an extra row fetched to detect whether a next page exists.
func (p *PgSQL) Products(ctx context.Context, filter storage.ProductFilter) (storage.ProductPage, error) {
	w := []goqu.Expression{
		goqu.I("deleted_at").IsNull(),
	}
	if filter.CategoryID != nil {
		w = append(w, goqu.I("category_id").Eq(uuid.UUID(*filter.CategoryID)))
	}
	if filter.BrandID != nil {
		w = append(w, goqu.I("brand_id").Eq(uuid.UUID(*filter.BrandID)))
	}
	if filter.NameContains != "" {
		w = append(w, goqu.I("name").ILike("%"+filter.NameContains+"%"))
	}
	if !filter.Cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(filter.Cursor))
	}

	fetch := filter.Limit + 1
	var rows []PgProduct
	if err := p.Builder.From(productsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(fetch).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.ProductPage{}, fmt.Errorf("could not fetch products from pg: %w", err)
	}

	var nextCursor *time.Time
	if uint(len(rows)) > filter.Limit {
		rows = rows[:filter.Limit]
		if len(rows) > 0 {
			nextCursor = &rows[len(rows)-1].CreatedAt
		}
	}

	return storage.ProductPage{
		Products:   pgProductsToDomain(rows),
		NextCursor: nextCursor,
	}, nil
}

func (p *PgSQL) ProductCountByCategory(ctx context.Context, id domain.CategoryID) (int64, error) {
	var count int64
	if _, err := p.Builder.From(productsTable).
		Select(goqu.COUNT("*")).
		Where(
			goqu.I("category_id").Eq(uuid.UUID(id)),
			goqu.I("deleted_at").IsNull(),
		).
		Executor().ScanValContext(ctx, &count); err != nil {
		return 0, fmt.Errorf("could not count products by category: %w", err)
	}

	return count, nil
}

func (p *PgSQL) ProductCountByBrand(ctx context.Context, id domain.BrandID) (int64, error) {
	var count int64
	if _, err := p.Builder.From(productsTable).
		Select(goqu.COUNT("*")).
		Where(
			goqu.I("brand_id").Eq(uuid.UUID(id)),
			goqu.I("deleted_at").IsNull(),
		).
		Executor().ScanValContext(ctx, &count); err != nil {
		return 0, fmt.Errorf("could not count products by brand: %w", err)
	}

	return count, nil
}
