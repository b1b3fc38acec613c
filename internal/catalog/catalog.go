// Package catalog manages the merchandising side of the shop: the category
// tree, brands and products. Stock arithmetic that has to survive concurrent
// checkouts lives in storage; this package layers the business rules on top
// (tree shape, restrict-deletes, soft-delete fallbacks).
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"shop/internal/forms"
	"shop/pkg/domain"
	"shop/pkg/serrors"
	"shop/pkg/storage"
)

// Catalog-level failure kinds.
var (
	// ErrCategoryCycle indicates a reparenting that would make a category its
	// own ancestor.
	ErrCategoryCycle = serrors.NewKind("CATEGORY_CYCLE")
	// ErrInsufficientStock indicates a stock adjustment that would take the
	// stock level below zero.
	ErrInsufficientStock = serrors.NewKind("INSUFFICIENT_STOCK")
)

// CategoryNode is a category with its resolved children, as returned by
// CategoryTree. Children are ordered by name.
type CategoryNode struct {
	domain.Category
	Children []*CategoryNode
}

// ProductDraft carries the fields required to create a product.
type ProductDraft struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  domain.CategoryID
	BrandID     domain.BrandID
}

// ProductChanges describes a partial product update. Only non-nil fields are
// applied. Stock set through here is an absolute administrative restock; use
// AdjustStock for relative changes.
type ProductChanges struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *domain.CategoryID
	BrandID     *domain.BrandID
}

// ProductListFilter narrows and pages product listings. Cursor is an RFC3339
// timestamp returned by a previous call, empty for the first page.
type ProductListFilter struct {
	CategoryID   *domain.CategoryID
	BrandID      *domain.BrandID
	NameContains string
	Cursor       string
	Limit        uint
}

// catalog is the concrete implementation of the Catalog interface.
type catalog struct {
	storage storage.Storage
}

// CreateCategory inserts a category under the given parent (nil for a root).
// Name collisions within the sibling set surface as conflicts.
func (c catalog) CreateCategory(ctx context.Context,
	name, description string,
	parentID *domain.CategoryID) (*domain.Category, error) {
	if name == "" {
		return nil, serrors.With(serrors.ErrInvalidInput, "category name is required")
	}
	if parentID != nil {
		parent, err := c.storage.CategoryByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("could not get parent category: %w", err)
		}
		if parent == nil {
			return nil, serrors.With(serrors.ErrNotFound, "parent category not found")
		}
	}

	res, err := c.storage.CreateCategory(ctx, domain.Category{
		Name:        name,
		Description: description,
		ParentID:    parentID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, serrors.Wrap(serrors.ErrConflict, err, "category name %q is taken among siblings", name)
		}

		return nil, fmt.Errorf("could not create category: %w", err)
	}

	return res, nil
}

// RenameCategory changes a category's name, keeping sibling uniqueness.
func (c catalog) RenameCategory(ctx context.Context,
	id domain.CategoryID,
	name string) (*domain.Category, error) {
	if name == "" {
		return nil, serrors.With(serrors.ErrInvalidInput, "category name is required")
	}

	res, err := c.storage.UpdateCategory(ctx, id, storage.CategoryUpdates{Name: &name})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, serrors.Wrap(serrors.ErrConflict, err, "category name %q is taken among siblings", name)
		}

		return nil, fmt.Errorf("could not rename category: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "category not found")
	}

	return res, nil
}

// MoveCategory reparents a category. A nil parent makes it a root. Moves that
// would create a cycle (the category becoming its own ancestor) are rejected.
// The ancestor walk and the reparent run in one transaction with the chain
// locked, so two concurrent moves cannot commit a cycle between them.
func (c catalog) MoveCategory(ctx context.Context,
	id domain.CategoryID,
	parentID *domain.CategoryID) (*domain.Category, error) {
	if parentID != nil && *parentID == id {
		return nil, serrors.With(ErrCategoryCycle, "category cannot be its own parent")
	}

	var res *domain.Category
	err := c.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		moved, err := tx.CategoryByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get category: %w", err)
		}
		if moved == nil {
			return serrors.With(serrors.ErrNotFound, "category not found")
		}

		// walk up from the new parent; hitting the moved category means the
		// parent is one of its descendants
		cursor := parentID
		for cursor != nil {
			parent, err := tx.CategoryByIDForUpdate(ctx, *cursor)
			if err != nil {
				return fmt.Errorf("could not get category: %w", err)
			}
			if parent == nil {
				return serrors.With(serrors.ErrNotFound, "parent category not found")
			}
			if parent.ID == id {
				return serrors.With(ErrCategoryCycle, "move would make category its own ancestor")
			}
			cursor = parent.ParentID
		}

		res, err = tx.SetCategoryParent(ctx, id, parentID)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return serrors.Wrap(serrors.ErrConflict, err, "category name is taken among new siblings")
			}

			return fmt.Errorf("could not move category: %w", err)
		}
		if res == nil {
			return serrors.With(serrors.ErrNotFound, "category not found")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// DeleteCategory removes an empty category. Categories still holding child
// categories or live products cannot be deleted.
func (c catalog) DeleteCategory(ctx context.Context, id domain.CategoryID) error {
	children, err := c.storage.ChildCategoryCount(ctx, id)
	if err != nil {
		return fmt.Errorf("could not count child categories: %w", err)
	}
	if children > 0 {
		return serrors.With(serrors.ErrConflict, "category still has %d child categories", children)
	}

	products, err := c.storage.ProductCountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("could not count category products: %w", err)
	}
	if products > 0 {
		return serrors.With(serrors.ErrConflict, "category still has %d products", products)
	}

	found, err := c.storage.DeleteCategory(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrReferenced) {
			return serrors.Wrap(serrors.ErrConflict, err, "category is still referenced")
		}

		return fmt.Errorf("could not delete category: %w", err)
	}
	if !found {
		return serrors.With(serrors.ErrNotFound, "category not found")
	}

	return nil
}

// CategoryTree returns all categories assembled into their tree shape, roots
// and children ordered by name.
func (c catalog) CategoryTree(ctx context.Context) ([]*CategoryNode, error) {
	categories, err := c.storage.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get categories: %w", err)
	}

	nodes := make(map[domain.CategoryID]*CategoryNode, len(categories))
	for _, category := range categories {
		nodes[category.ID] = &CategoryNode{Category: category}
	}

	var roots []*CategoryNode
	for _, category := range categories {
		node := nodes[category.ID]
		if category.ParentID == nil {
			roots = append(roots, node)

			continue
		}
		if parent, ok := nodes[*category.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	// Categories() is name-ordered, but map iteration shuffled the roots
	sort.Slice(roots, func(i, j int) bool { return roots[i].Name < roots[j].Name })
	for _, node := range nodes {
		children := node.Children
		sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	}

	return roots, nil
}

// CreateBrand inserts a brand with a globally unique name.
func (c catalog) CreateBrand(ctx context.Context, name string) (*domain.Brand, error) {
	if name == "" {
		return nil, serrors.With(serrors.ErrInvalidInput, "brand name is required")
	}

	res, err := c.storage.CreateBrand(ctx, domain.Brand{Name: name})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, serrors.Wrap(serrors.ErrConflict, err, "brand name %q is taken", name)
		}

		return nil, fmt.Errorf("could not create brand: %w", err)
	}

	return res, nil
}

// RenameBrand changes a brand's name.
func (c catalog) RenameBrand(ctx context.Context,
	id domain.BrandID,
	name string) (*domain.Brand, error) {
	if name == "" {
		return nil, serrors.With(serrors.ErrInvalidInput, "brand name is required")
	}

	res, err := c.storage.RenameBrand(ctx, id, name)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, serrors.Wrap(serrors.ErrConflict, err, "brand name %q is taken", name)
		}

		return nil, fmt.Errorf("could not rename brand: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "brand not found")
	}

	return res, nil
}

// DeleteBrand removes a brand that no product references anymore.
func (c catalog) DeleteBrand(ctx context.Context, id domain.BrandID) error {
	products, err := c.storage.ProductCountByBrand(ctx, id)
	if err != nil {
		return fmt.Errorf("could not count brand products: %w", err)
	}
	if products > 0 {
		return serrors.With(serrors.ErrConflict, "brand still has %d products", products)
	}

	found, err := c.storage.DeleteBrand(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrReferenced) {
			return serrors.Wrap(serrors.ErrConflict, err, "brand is still referenced")
		}

		return fmt.Errorf("could not delete brand: %w", err)
	}
	if !found {
		return serrors.With(serrors.ErrNotFound, "brand not found")
	}

	return nil
}

// Brands returns all brands ordered by name.
func (c catalog) Brands(ctx context.Context) ([]domain.Brand, error) {
	res, err := c.storage.Brands(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get brands: %w", err)
	}

	return res, nil
}

// CreateProduct inserts a new product after checking that its category and
// brand exist.
func (c catalog) CreateProduct(ctx context.Context, draft ProductDraft) (*domain.Product, error) {
	form := forms.ProductForm{
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		Stock:       draft.Stock,
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	category, err := c.storage.CategoryByID(ctx, draft.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("could not get category: %w", err)
	}
	if category == nil {
		return nil, serrors.With(serrors.ErrNotFound, "category not found")
	}

	brand, err := c.storage.BrandByID(ctx, draft.BrandID)
	if err != nil {
		return nil, fmt.Errorf("could not get brand: %w", err)
	}
	if brand == nil {
		return nil, serrors.With(serrors.ErrNotFound, "brand not found")
	}

	res, err := c.storage.CreateProduct(ctx, domain.Product{
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		Stock:       draft.Stock,
		CategoryID:  draft.CategoryID,
		BrandID:     draft.BrandID,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create product: %w", err)
	}

	return res, nil
}

// UpdateProduct applies a partial update to a live product.
func (c catalog) UpdateProduct(ctx context.Context,
	id domain.ProductID,
	changes ProductChanges) (*domain.Product, error) {
	if changes.Price != nil && changes.Price.IsNegative() {
		return nil, serrors.With(serrors.ErrInvalidInput, "price cannot be negative")
	}
	if changes.Stock != nil && *changes.Stock < 0 {
		return nil, serrors.With(serrors.ErrInvalidInput, "stock cannot be negative")
	}
	if changes.CategoryID != nil {
		category, err := c.storage.CategoryByID(ctx, *changes.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("could not get category: %w", err)
		}
		if category == nil {
			return nil, serrors.With(serrors.ErrNotFound, "category not found")
		}
	}
	if changes.BrandID != nil {
		brand, err := c.storage.BrandByID(ctx, *changes.BrandID)
		if err != nil {
			return nil, fmt.Errorf("could not get brand: %w", err)
		}
		if brand == nil {
			return nil, serrors.With(serrors.ErrNotFound, "brand not found")
		}
	}

	res, err := c.storage.UpdateProduct(ctx, id, storage.ProductUpdates{
		Name:        changes.Name,
		Description: changes.Description,
		Price:       changes.Price,
		Stock:       changes.Stock,
		CategoryID:  changes.CategoryID,
		BrandID:     changes.BrandID,
	})
	if err != nil {
		return nil, fmt.Errorf("could not update product: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "product not found")
	}

	return res, nil
}

// AdjustStock applies a relative stock change. Negative deltas use the
// conditional decrement, so the stock level can never go below zero.
func (c catalog) AdjustStock(ctx context.Context,
	id domain.ProductID,
	delta int) (*domain.Product, error) {
	switch {
	case delta > 0:
		if err := c.storage.IncrementStock(ctx, id, delta); err != nil {
			return nil, fmt.Errorf("could not increment stock: %w", err)
		}
	case delta < 0:
		applied, err := c.storage.DecrementStock(ctx, id, -delta)
		if err != nil {
			return nil, fmt.Errorf("could not decrement stock: %w", err)
		}
		if !applied {
			return nil, serrors.With(ErrInsufficientStock, "stock cannot go below zero")
		}
	}

	res, err := c.storage.ProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get product: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "product not found")
	}

	return res, nil
}

// DeleteProduct removes a product. Products referenced by historical order
// items (or someone's cart) cannot be hard-deleted; those are soft-deleted
// instead, which hides them from the live catalog while keeping the rows
// order history points at.
func (c catalog) DeleteProduct(ctx context.Context, id domain.ProductID) error {
	found, err := c.storage.DeleteProduct(ctx, id)
	if err == nil {
		if !found {
			return serrors.With(serrors.ErrNotFound, "product not found")
		}

		return nil
	}
	if !errors.Is(err, storage.ErrReferenced) {
		return fmt.Errorf("could not delete product: %w", err)
	}

	res, err := c.storage.SoftDeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("could not soft-delete product: %w", err)
	}
	if res == nil {
		return serrors.With(serrors.ErrNotFound, "product not found")
	}

	return nil
}

// ProductByID fetches a live product.
func (c catalog) ProductByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	res, err := c.storage.ProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get product: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "product not found")
	}

	return res, nil
}

// defaultPageLimit is used when a caller does not set a page size.
const defaultPageLimit = 20

// ListProducts returns a filtered page of live products, newest first. It
// supports cursor-based pagination using an RFC3339 timestamp string and
// returns the next cursor when more results are available. A zero limit
// falls back to defaultPageLimit.
func (c catalog) ListProducts(ctx context.Context,
	filter ProductListFilter) ([]domain.Product, string, error) {
	if filter.Limit == 0 {
		filter.Limit = defaultPageLimit
	}

	storageFilter := storage.ProductFilter{
		CategoryID:   filter.CategoryID,
		BrandID:      filter.BrandID,
		NameContains: filter.NameContains,
		Limit:        filter.Limit,
	}
	if filter.Cursor != "" {
		t, err := parseCursor(filter.Cursor)
		if err != nil {
			return nil, "", err
		}
		storageFilter.Cursor = t
	}

	page, err := c.storage.Products(ctx, storageFilter)
	if err != nil {
		return nil, "", fmt.Errorf("could not get products: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = formatCursor(*page.NextCursor)
	}

	return page.Products, next, nil
}

func parseCursor(cursor string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, cursor)
	if err != nil {
		return time.Time{}, serrors.Wrap(serrors.ErrInvalidInput, err, "invalid cursor")
	}

	return t, nil
}

func formatCursor(t time.Time) string { return t.Format(time.RFC3339Nano) }

// New creates a new Catalog service backed by the provided storage.
func New(storage storage.Storage) Catalog {
	return &catalog{storage: storage}
}
