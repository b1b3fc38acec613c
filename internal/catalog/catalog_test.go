package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shop/pkg/domain"
	"shop/pkg/serrors"
	"shop/pkg/storage/storagetest"
)

func seedProduct(t *testing.T, svc Catalog, name string) *domain.Product {
	t.Helper()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, name+" category", "", nil)
	require.NoError(t, err)
	brand, err := svc.CreateBrand(ctx, name+" brand")
	require.NoError(t, err)

	product, err := svc.CreateProduct(ctx, ProductDraft{
		Name:       name,
		Price:      decimal.NewFromInt(10),
		Stock:      5,
		CategoryID: category.ID,
		BrandID:    brand.ID,
	})
	require.NoError(t, err)

	return product
}

func TestCategoryTree(t *testing.T) {
	svc := New(storagetest.New())
	ctx := context.Background()

	electronics, err := svc.CreateCategory(ctx, "Electronics", "", nil)
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "Audio", "", &electronics.ID)
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "Cameras", "", &electronics.ID)
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "Books", "", nil)
	require.NoError(t, err)

	tree, err := svc.CategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	require.Equal(t, "Books", tree[0].Name)
	require.Equal(t, "Electronics", tree[1].Name)
	require.Len(t, tree[1].Children, 2)
	require.Equal(t, "Audio", tree[1].Children[0].Name)
	require.Equal(t, "Cameras", tree[1].Children[1].Name)
}

func TestCategorySiblingNames(t *testing.T) {
	svc := New(storagetest.New())
	ctx := context.Background()

	root, err := svc.CreateCategory(ctx, "Electronics", "", nil)
	require.NoError(t, err)

	// same name is fine on another level, a conflict among siblings
	_, err = svc.CreateCategory(ctx, "Electronics", "", &root.ID)
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "Electronics", "", nil)
	require.ErrorIs(t, err, serrors.ErrConflict)

	other, err := svc.CreateCategory(ctx, "Audio", "", &root.ID)
	require.NoError(t, err)
	_, err = svc.RenameCategory(ctx, other.ID, "Electronics")
	require.ErrorIs(t, err, serrors.ErrConflict)
}

func TestMoveCategoryCycle(t *testing.T) {
	svc := New(storagetest.New())
	ctx := context.Background()

	a, err := svc.CreateCategory(ctx, "A", "", nil)
	require.NoError(t, err)
	b, err := svc.CreateCategory(ctx, "B", "", &a.ID)
	require.NoError(t, err)
	c, err := svc.CreateCategory(ctx, "C", "", &b.ID)
	require.NoError(t, err)

	_, err = svc.MoveCategory(ctx, a.ID, &a.ID)
	require.ErrorIs(t, err, ErrCategoryCycle)
	_, err = svc.MoveCategory(ctx, a.ID, &c.ID)
	require.ErrorIs(t, err, ErrCategoryCycle)

	// a legal reparent: C becomes a root
	moved, err := svc.MoveCategory(ctx, c.ID, nil)
	require.NoError(t, err)
	require.Nil(t, moved.ParentID)
}

// TestMoveCategoryConcurrentMoves verifies that two moves racing to put two
// categories under each other cannot commit a cycle: the move that lands
// second sees the first one's reparent and is rejected.
func TestMoveCategoryConcurrentMoves(t *testing.T) {
	svc := New(storagetest.New())
	ctx := context.Background()

	a, err := svc.CreateCategory(ctx, "A", "", nil)
	require.NoError(t, err)
	b, err := svc.CreateCategory(ctx, "B", "", nil)
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, move := range []struct {
		id     domain.CategoryID
		parent domain.CategoryID
	}{
		{a.ID, b.ID},
		{b.ID, a.ID},
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.MoveCategory(ctx, move.id, &move.parent)
		}()
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		default:
			require.ErrorIs(t, err, ErrCategoryCycle)
			lost++
		}
	}
	require.Equal(t, 1, won)
	require.Equal(t, 1, lost)

	// the tree still holds every category, so no subtree got orphaned into
	// a cycle
	tree, err := svc.CategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
}

func TestDeleteCategoryRestricted(t *testing.T) {
	svc := New(storagetest.New())
	ctx := context.Background()

	parent, err := svc.CreateCategory(ctx, "Parent", "", nil)
	require.NoError(t, err)
	child, err := svc.CreateCategory(ctx, "Child", "", &parent.ID)
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, parent.ID)
	require.ErrorIs(t, err, serrors.ErrConflict)

	brand, err := svc.CreateBrand(ctx, "Acme")
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, ProductDraft{
		Name:       "Widget",
		Price:      decimal.NewFromInt(5),
		CategoryID: child.ID,
		BrandID:    brand.ID,
	})
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, child.ID)
	require.ErrorIs(t, err, serrors.ErrConflict)
}

func TestBrands(t *testing.T) {
	svc := New(storagetest.New())
	ctx := context.Background()

	acme, err := svc.CreateBrand(ctx, "Acme")
	require.NoError(t, err)
	_, err = svc.CreateBrand(ctx, "Acme")
	require.ErrorIs(t, err, serrors.ErrConflict)

	renamed, err := svc.RenameBrand(ctx, acme.ID, "Acme Corp")
	require.NoError(t, err)
	require.Equal(t, "Acme Corp", renamed.Name)

	require.NoError(t, svc.DeleteBrand(ctx, acme.ID))
	err = svc.DeleteBrand(ctx, acme.ID)
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestCreateProductChecksReferences(t *testing.T) {
	svc := New(storagetest.New())
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Electronics", "", nil)
	require.NoError(t, err)
	brand, err := svc.CreateBrand(ctx, "Acme")
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, ProductDraft{
		Name:       "Widget",
		Price:      decimal.NewFromInt(-1),
		CategoryID: category.ID,
		BrandID:    brand.ID,
	})
	require.ErrorIs(t, err, serrors.ErrInvalidInput)

	_, err = svc.CreateProduct(ctx, ProductDraft{
		Name:       "Widget",
		Price:      decimal.NewFromInt(5),
		CategoryID: domain.CategoryID(uuid.New()),
		BrandID:    brand.ID,
	})
	require.ErrorIs(t, err, serrors.ErrNotFound)

	_, err = svc.CreateProduct(ctx, ProductDraft{
		Name:       "Widget",
		Price:      decimal.NewFromInt(5),
		CategoryID: category.ID,
		BrandID:    domain.BrandID(uuid.New()),
	})
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestAdjustStock(t *testing.T) {
	svc := New(storagetest.New())
	ctx := context.Background()

	product := seedProduct(t, svc, "Widget")

	up, err := svc.AdjustStock(ctx, product.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 8, up.Stock)

	down, err := svc.AdjustStock(ctx, product.ID, -8)
	require.NoError(t, err)
	require.Equal(t, 0, down.Stock)

	_, err = svc.AdjustStock(ctx, product.ID, -1)
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestDeleteProductFallsBackToSoftDelete(t *testing.T) {
	fake := storagetest.New()
	svc := New(fake)
	ctx := context.Background()

	free := seedProduct(t, svc, "Widget")
	require.NoError(t, svc.DeleteProduct(ctx, free.ID))
	_, err := svc.ProductByID(ctx, free.ID)
	require.ErrorIs(t, err, serrors.ErrNotFound)

	// a product referenced by an order line survives as a soft-deleted row
	referenced := seedProduct(t, svc, "Gadget")
	_, _, err = fake.CreateOrder(ctx, domain.Order{
		UserID: domain.UserID(uuid.New()),
		Number: "ORDER-250101-0001",
		Total:  decimal.NewFromInt(10),
	}, []domain.OrderItem{{
		ProductID: referenced.ID,
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(10),
	}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, referenced.ID))
	_, err = svc.ProductByID(ctx, referenced.ID)
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestListProducts(t *testing.T) {
	svc := New(storagetest.New())
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Electronics", "", nil)
	require.NoError(t, err)
	brand, err := svc.CreateBrand(ctx, "Acme")
	require.NoError(t, err)

	names := []string{"Alpha Speaker", "Beta Speaker", "Gamma Camera"}
	for _, name := range names {
		_, err = svc.CreateProduct(ctx, ProductDraft{
			Name:       name,
			Price:      decimal.NewFromInt(10),
			Stock:      1,
			CategoryID: category.ID,
			BrandID:    brand.ID,
		})
		require.NoError(t, err)
	}

	page1, cursor, err := svc.ListProducts(ctx, ProductListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotEmpty(t, cursor)
	require.Equal(t, "Gamma Camera", page1[0].Name) // newest first

	page2, cursor, err := svc.ListProducts(ctx, ProductListFilter{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	require.Empty(t, cursor)
	require.Equal(t, "Alpha Speaker", page2[0].Name)

	speakers, _, err := svc.ListProducts(ctx, ProductListFilter{NameContains: "speaker", Limit: 10})
	require.NoError(t, err)
	require.Len(t, speakers, 2)

	_, _, err = svc.ListProducts(ctx, ProductListFilter{Cursor: "not-a-time", Limit: 2})
	require.ErrorIs(t, err, serrors.ErrInvalidInput)

	// an unset limit falls back to the default page size
	all, cursor, err := svc.ListProducts(ctx, ProductListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Empty(t, cursor)
}
