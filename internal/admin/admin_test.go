package admin

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shop/pkg/domain"
	"shop/pkg/serrors"
	"shop/pkg/storage/storagetest"
)

func TestDescriptorsCoverAllEntities(t *testing.T) {
	descriptors := Descriptors()

	byEntity := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		byEntity[d.Entity] = d
		require.NotEmpty(t, d.ListColumns, d.Entity)
	}
	for _, entity := range []string{
		EntityUsers, EntityCategories, EntityBrands, EntityProducts,
		EntityCarts, EntityOrders, EntityReviews,
	} {
		require.Contains(t, byEntity, entity)
	}
}

func TestListUnknownEntity(t *testing.T) {
	svc := New(storagetest.New())

	_, err := svc.List(context.Background(), "warehouses", Query{})
	require.ErrorIs(t, err, serrors.ErrInvalidInput)
}

func TestListUsers(t *testing.T) {
	fake := storagetest.New()
	svc := New(fake)
	ctx := context.Background()

	_, err := fake.CreateUser(ctx, domain.User{Handle: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	page, err := svc.List(ctx, EntityUsers, Query{Search: "alice"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	require.Equal(t, "alice", page.Rows[0]["handle"])

	page, err = svc.List(ctx, EntityUsers, Query{Search: "alice@example.com"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)

	page, err = svc.List(ctx, EntityUsers, Query{Search: "nobody"})
	require.NoError(t, err)
	require.Empty(t, page.Rows)

	_, err = svc.List(ctx, EntityUsers, Query{})
	require.ErrorIs(t, err, serrors.ErrInvalidInput)
}

func TestListProducts(t *testing.T) {
	fake := storagetest.New()
	svc := New(fake)
	ctx := context.Background()

	category, err := fake.CreateCategory(ctx, domain.Category{Name: "Electronics"})
	require.NoError(t, err)
	other, err := fake.CreateCategory(ctx, domain.Category{Name: "Books"})
	require.NoError(t, err)
	brand, err := fake.CreateBrand(ctx, domain.Brand{Name: "Acme"})
	require.NoError(t, err)

	for _, spec := range []struct {
		name     string
		category domain.CategoryID
	}{
		{"Speaker", category.ID},
		{"Camera", category.ID},
		{"Novel", other.ID},
	} {
		_, err = fake.CreateProduct(ctx, domain.Product{
			Name:       spec.name,
			Price:      decimal.NewFromInt(10),
			CategoryID: spec.category,
			BrandID:    brand.ID,
		})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, EntityProducts, Query{
		Filters: map[string]string{"categoryId": uuid.UUID(category.ID).String()},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)

	page, err = svc.List(ctx, EntityProducts, Query{Search: "nov", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	require.Equal(t, "Novel", page.Rows[0]["name"])

	_, err = svc.List(ctx, EntityProducts, Query{
		Filters: map[string]string{"categoryId": "not-a-uuid"},
	})
	require.ErrorIs(t, err, serrors.ErrInvalidInput)

	// a zero-value query pages with the default limit
	page, err = svc.List(ctx, EntityProducts, Query{})
	require.NoError(t, err)
	require.Len(t, page.Rows, 3)
	require.Empty(t, page.NextCursor)
}

func TestListOrders(t *testing.T) {
	fake := storagetest.New()
	svc := New(fake)
	ctx := context.Background()

	userID := domain.UserID(uuid.New())
	order, _, err := fake.CreateOrder(ctx, domain.Order{
		UserID: userID,
		Number: "ORDER-250101-0001",
		Total:  decimal.NewFromInt(42),
	}, nil)
	require.NoError(t, err)

	page, err := svc.List(ctx, EntityOrders, Query{Search: order.Number})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	require.Equal(t, order.Number, page.Rows[0]["number"])

	page, err = svc.List(ctx, EntityOrders, Query{
		Filters: map[string]string{"userId": uuid.UUID(userID).String()},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)

	_, err = svc.List(ctx, EntityOrders, Query{})
	require.ErrorIs(t, err, serrors.ErrInvalidInput)
}

func TestListCategoriesAndBrands(t *testing.T) {
	fake := storagetest.New()
	svc := New(fake)
	ctx := context.Background()

	root, err := fake.CreateCategory(ctx, domain.Category{Name: "Electronics"})
	require.NoError(t, err)
	_, err = fake.CreateCategory(ctx, domain.Category{Name: "Audio", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = fake.CreateBrand(ctx, domain.Brand{Name: "Acme"})
	require.NoError(t, err)

	page, err := svc.List(ctx, EntityCategories, Query{})
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)

	page, err = svc.List(ctx, EntityCategories, Query{Search: "aud"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	require.Equal(t, uuid.UUID(root.ID).String(), page.Rows[0]["parentId"])

	page, err = svc.List(ctx, EntityBrands, Query{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
}

func TestListCartsAndReviews(t *testing.T) {
	fake := storagetest.New()
	svc := New(fake)
	ctx := context.Background()

	user, err := fake.CreateUser(ctx, domain.User{Handle: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	cart, err := fake.CreateCart(ctx, domain.Cart{UserID: user.ID})
	require.NoError(t, err)

	page, err := svc.List(ctx, EntityCarts, Query{
		Filters: map[string]string{"userId": uuid.UUID(user.ID).String()},
	})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	require.Equal(t, uuid.UUID(cart.ID).String(), page.Rows[0]["id"])

	productID := domain.ProductID(uuid.New())
	_, err = fake.CreateReview(ctx, domain.Review{
		ProductID: productID,
		UserID:    user.ID,
		Rating:    5,
	})
	require.NoError(t, err)

	page, err = svc.List(ctx, EntityReviews, Query{
		Filters: map[string]string{"productId": uuid.UUID(productID).String()},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	require.Equal(t, 5, page.Rows[0]["rating"])
}
