package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"shop/pkg/domain"
	"shop/pkg/storage"
)

func TestPgSQL_Carts(t *testing.T) {
	t.Parallel()

	pg, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	user := seedUser(t, pg, "shopper")

	cart, err := pg.CreateCart(ctx, domain.Cart{UserID: user.ID})
	require.NoError(t, err)
	require.False(t, cart.CreatedAt.IsZero())

	t.Run("one live cart per user", func(t *testing.T) {
		_, err := pg.CreateCart(ctx, domain.Cart{UserID: user.ID})
		require.Error(t, err)
		var dup *storage.DuplicateError
		require.ErrorAs(t, err, &dup)
		require.Equal(t, "cart", dup.Field)
	})

	t.Run("lookups", func(t *testing.T) {
		byUser, err := pg.CartByUser(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, byUser)
		require.Equal(t, cart.ID, byUser.ID)

		byID, err := pg.CartByID(ctx, cart.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
	})

	t.Run("touch bumps updated_at", func(t *testing.T) {
		require.NoError(t, pg.TouchCart(ctx, cart.ID))

		touched, err := pg.CartByID(ctx, cart.ID)
		require.NoError(t, err)
		require.True(t, touched.UpdatedAt.After(cart.UpdatedAt))
	})

	t.Run("retire frees the user for a new cart", func(t *testing.T) {
		retired, err := pg.RetireCart(ctx, cart.ID)
		require.NoError(t, err)
		require.True(t, retired)

		// retired carts are invisible
		gone, err := pg.CartByID(ctx, cart.ID)
		require.NoError(t, err)
		require.Nil(t, gone)

		// retiring twice is a no-op
		retired, err = pg.RetireCart(ctx, cart.ID)
		require.NoError(t, err)
		require.False(t, retired)

		_, err = pg.CreateCart(ctx, domain.Cart{UserID: user.ID})
		require.NoError(t, err)
	})
}

func TestPgSQL_CartItems(t *testing.T) {
	t.Parallel()

	pg, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	user := seedUser(t, pg, "shopper")
	category, brand := seedCatalog(t, pg)
	widget := seedProduct(t, pg, "Widget", "9.50", 10, category.ID, brand.ID)
	gadget := seedProduct(t, pg, "Gadget", "20.00", 10, category.ID, brand.ID)

	cart, err := pg.CreateCart(ctx, domain.Cart{UserID: user.ID})
	require.NoError(t, err)

	t.Run("upsert increments existing lines", func(t *testing.T) {
		first, err := pg.UpsertCartItem(ctx, domain.CartItem{
			CartID:    cart.ID,
			ProductID: widget.ID,
			Quantity:  2,
		})
		require.NoError(t, err)
		require.Equal(t, 2, first.Quantity)

		again, err := pg.UpsertCartItem(ctx, domain.CartItem{
			CartID:    cart.ID,
			ProductID: widget.ID,
			Quantity:  3,
		})
		require.NoError(t, err)
		require.Equal(t, first.ID, again.ID)
		require.Equal(t, 5, again.Quantity)
	})

	t.Run("set quantity", func(t *testing.T) {
		item, err := pg.SetCartItemQuantity(ctx, cart.ID, widget.ID, 1)
		require.NoError(t, err)
		require.Equal(t, 1, item.Quantity)

		missing, err := pg.SetCartItemQuantity(ctx, cart.ID, gadget.ID, 1)
		require.NoError(t, err)
		require.Nil(t, missing)
	})

	t.Run("lines join products", func(t *testing.T) {
		_, err := pg.UpsertCartItem(ctx, domain.CartItem{
			CartID:    cart.ID,
			ProductID: gadget.ID,
			Quantity:  1,
		})
		require.NoError(t, err)

		lines, err := pg.CartLines(ctx, cart.ID)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		// ordered by time added
		require.Equal(t, "Widget", lines[0].Product.Name)
		require.Equal(t, "Gadget", lines[1].Product.Name)

		// a soft-deleted product leaves its line without a product match
		_, err = pg.SoftDeleteProduct(ctx, gadget.ID)
		require.NoError(t, err)

		lines, err = pg.CartLines(ctx, cart.ID)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		require.Equal(t, domain.ProductID(uuid.Nil), lines[1].Product.ID)
	})

	t.Run("delete and clear", func(t *testing.T) {
		deleted, err := pg.DeleteCartItem(ctx, cart.ID, widget.ID)
		require.NoError(t, err)
		require.True(t, deleted)

		deleted, err = pg.DeleteCartItem(ctx, cart.ID, widget.ID)
		require.NoError(t, err)
		require.False(t, deleted)

		require.NoError(t, pg.ClearCart(ctx, cart.ID))

		lines, err := pg.CartLines(ctx, cart.ID)
		require.NoError(t, err)
		require.Empty(t, lines)
	})
}
