package storage

import (
	"context"
	"shop/pkg/domain"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryUpdates describes optional fields applied to a category. Only
// non-nil fields are updated. Reparenting has its own operation because the
// parent can legitimately be set to NULL.
type CategoryUpdates struct {
	Name        *string
	Description *string
}

// ProductUpdates describes optional fields applied to a product. Only
// non-nil fields are updated.
type ProductUpdates struct {
	Name        *string
	Description *string
	// Price replaces the current unit price. Values below zero are rejected
	// by the schema's CHECK constraint.
	Price *decimal.Decimal
	// Stock replaces the absolute stock quantity. Prefer DecrementStock for
	// checkout paths; this is for administrative restocks.
	Stock *int
	// CategoryID and BrandID move the product.
	CategoryID *domain.CategoryID
	BrandID    *domain.BrandID
	// RatingAvg and RatingCount refresh the denormalized review aggregate.
	RatingAvg   *float64
	RatingCount *int
}

// ProductFilter narrows and pages product listings.
type ProductFilter struct {
	// CategoryID, when provided, restricts to one category.
	CategoryID *domain.CategoryID
	// BrandID, when provided, restricts to one brand.
	BrandID *domain.BrandID
	// NameContains, when non-empty, performs a case-insensitive substring
	// match on the product name.
	NameContains string
	// Cursor pages by creation time: only products created before it are
	// returned. Zero means first page.
	Cursor time.Time
	// Limit caps the page size.
	Limit uint
}

// ProductPage groups a page of products with an optional NextCursor used for
// pagination.
type ProductPage struct {
	Products []domain.Product
	// NextCursor is nil when there is no next page.
	NextCursor *time.Time
}

// CatalogStorage defines CRUD and query operations for categories, brands and
// products. Product reads exclude soft-deleted rows unless noted otherwise.
type CatalogStorage interface {
	// CreateCategory inserts a category. Sibling name collisions return
	// *DuplicateError.
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	// UpdateCategory applies the field set and returns the updated row, or
	// nil when the category does not exist.
	UpdateCategory(ctx context.Context, id domain.CategoryID, updates CategoryUpdates) (*domain.Category, error)
	// SetCategoryParent reparents a category; a nil parent makes it a root.
	// Returns nil when the category does not exist. The caller is responsible
	// for cycle checks.
	SetCategoryParent(ctx context.Context, id domain.CategoryID, parentID *domain.CategoryID) (*domain.Category, error)
	// DeleteCategory removes a category. Returns false when it did not exist.
	// Rows still referenced by products or child categories return
	// *ReferencedError.
	DeleteCategory(ctx context.Context, id domain.CategoryID) (bool, error)
	// CategoryByID fetches a category. Returns nil when not found.
	CategoryByID(ctx context.Context, id domain.CategoryID) (*domain.Category, error)
	// CategoryByIDForUpdate fetches a category and, inside a transaction,
	// locks the row until the transaction ends. Returns nil when not found.
	CategoryByIDForUpdate(ctx context.Context, id domain.CategoryID) (*domain.Category, error)
	// Categories returns all categories ordered by name. The full set is
	// small reference data; callers build trees in memory.
	Categories(ctx context.Context) ([]domain.Category, error)
	// ChildCategoryCount returns the number of direct children.
	ChildCategoryCount(ctx context.Context, id domain.CategoryID) (int64, error)

	// CreateBrand inserts a brand. Name collisions return *DuplicateError.
	CreateBrand(ctx context.Context, brand domain.Brand) (*domain.Brand, error)
	// RenameBrand changes the brand name and returns the updated row, or nil
	// when the brand does not exist.
	RenameBrand(ctx context.Context, id domain.BrandID, name string) (*domain.Brand, error)
	// DeleteBrand removes a brand. Returns false when it did not exist; rows
	// still referenced by products return *ReferencedError.
	DeleteBrand(ctx context.Context, id domain.BrandID) (bool, error)
	// BrandByID fetches a brand. Returns nil when not found.
	BrandByID(ctx context.Context, id domain.BrandID) (*domain.Brand, error)
	// Brands returns all brands ordered by name.
	Brands(ctx context.Context) ([]domain.Brand, error)

	// CreateProduct inserts a product and returns the stored row.
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	// UpdateProduct applies the field set and returns the updated row, or nil
	// when the product does not exist or is soft-deleted.
	UpdateProduct(ctx context.Context, id domain.ProductID, updates ProductUpdates) (*domain.Product, error)
	// DecrementStock atomically subtracts qty from the product's stock if and
	// only if enough stock remains. It reports whether the decrement was
	// applied. This is the oversell guard for concurrent checkouts.
	DecrementStock(ctx context.Context, id domain.ProductID, qty int) (bool, error)
	// IncrementStock adds qty back to the product's stock (restocks,
	// cancellations).
	IncrementStock(ctx context.Context, id domain.ProductID, qty int) error
	// SoftDeleteProduct hides a product from the live catalog while keeping
	// the row for historical order items. Returns the deleted row, or nil if
	// it was not found.
	SoftDeleteProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	// DeleteProduct removes a product row entirely. Returns false when it did
	// not exist; rows referenced by order or cart items return
	// *ReferencedError.
	DeleteProduct(ctx context.Context, id domain.ProductID) (bool, error)
	// ProductByID fetches a live product. Returns nil when not found.
	ProductByID(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	// Products returns a filtered, cursor-paged product listing ordered by
	// creation time descending.
	Products(ctx context.Context, filter ProductFilter) (ProductPage, error)
	// ProductCountByCategory returns the number of live products in the
	// category.
	ProductCountByCategory(ctx context.Context, id domain.CategoryID) (int64, error)
	// ProductCountByBrand returns the number of live products of the brand.
	ProductCountByBrand(ctx context.Context, id domain.BrandID) (int64, error)
}
