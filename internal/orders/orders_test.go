package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shop/pkg/domain"
	"shop/pkg/serrors"
	"shop/pkg/storage/storagetest"
)

func seedOrder(t *testing.T, fake *storagetest.Fake, status domain.OrderStatus) *domain.Order {
	t.Helper()
	ctx := context.Background()

	number, err := NumberFor(ctx, fake, time.Now())
	require.NoError(t, err)

	order, _, err := fake.CreateOrder(ctx, domain.Order{
		UserID: domain.UserID(uuid.New()),
		Number: number,
		Status: status,
		Total:  decimal.NewFromInt(42),
	}, []domain.OrderItem{{
		ProductID: domain.ProductID(uuid.New()),
		Quantity:  2,
		UnitPrice: decimal.NewFromInt(21),
	}})
	require.NoError(t, err)

	return order
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to domain.OrderStatus
		ok       bool
	}{
		{domain.OrderStatusPending, domain.OrderStatusPaid, true},
		{domain.OrderStatusPending, domain.OrderStatusCancelled, true},
		{domain.OrderStatusPending, domain.OrderStatusShipped, false},
		{domain.OrderStatusPending, domain.OrderStatusDelivered, false},
		{domain.OrderStatusPaid, domain.OrderStatusShipped, true},
		{domain.OrderStatusPaid, domain.OrderStatusCancelled, true},
		{domain.OrderStatusPaid, domain.OrderStatusDelivered, false},
		{domain.OrderStatusPaid, domain.OrderStatusPending, false},
		{domain.OrderStatusShipped, domain.OrderStatusDelivered, true},
		{domain.OrderStatusShipped, domain.OrderStatusCancelled, false},
		{domain.OrderStatusDelivered, domain.OrderStatusCancelled, false},
		{domain.OrderStatusCancelled, domain.OrderStatusPaid, false},
		{domain.OrderStatusCancelled, domain.OrderStatusPending, false},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s to %s", tc.from, tc.to), func(t *testing.T) {
			require.Equal(t, tc.ok, CanTransition(tc.from, tc.to))
		})
	}
}

func TestTransition(t *testing.T) {
	fake := storagetest.New()
	svc := New(fake)
	ctx := context.Background()

	order := seedOrder(t, fake, domain.OrderStatusPending)

	paid, err := svc.Transition(ctx, order.ID, domain.OrderStatusPaid)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPaid, paid.Status)
	require.False(t, paid.PaidAt.IsZero())

	shipped, err := svc.Transition(ctx, order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusShipped, shipped.Status)

	_, err = svc.Transition(ctx, order.ID, domain.OrderStatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)

	delivered, err := svc.Transition(ctx, order.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusDelivered, delivered.Status)

	_, err = svc.Transition(ctx, domain.OrderID(uuid.New()), domain.OrderStatusPaid)
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestMarkPaid(t *testing.T) {
	fake := storagetest.New()
	svc := New(fake)
	ctx := context.Background()

	order := seedOrder(t, fake, domain.OrderStatusPending)

	paid, err := svc.MarkPaid(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPaid, paid.Status)
	require.WithinDuration(t, time.Now(), paid.PaidAt, time.Minute)

	_, err = svc.MarkPaid(ctx, order.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNumberFor(t *testing.T) {
	fake := storagetest.New()
	ctx := context.Background()

	day := time.Date(2025, 1, 31, 15, 0, 0, 0, time.UTC)

	first, err := NumberFor(ctx, fake, day)
	require.NoError(t, err)
	require.Equal(t, "ORDER-250131-0001", first)

	_, _, err = fake.CreateOrder(ctx, domain.Order{
		UserID: domain.UserID(uuid.New()),
		Number: first,
		Total:  decimal.Zero,
	}, nil)
	require.NoError(t, err)

	second, err := NumberFor(ctx, fake, day)
	require.NoError(t, err)
	require.Equal(t, "ORDER-250131-0002", second)

	// the sequence restarts each day
	next, err := NumberFor(ctx, fake, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Equal(t, "ORDER-250201-0001", next)
}

func TestLookups(t *testing.T) {
	fake := storagetest.New()
	svc := New(fake)
	ctx := context.Background()

	order := seedOrder(t, fake, domain.OrderStatusPending)

	byID, items, err := svc.ByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.Number, byID.Number)
	require.Len(t, items, 1)
	require.True(t, items[0].Subtotal().Equal(decimal.NewFromInt(42)))

	byNumber, _, err := svc.ByNumber(ctx, order.Number)
	require.NoError(t, err)
	require.Equal(t, order.ID, byNumber.ID)

	_, _, err = svc.ByID(ctx, domain.OrderID(uuid.New()))
	require.ErrorIs(t, err, serrors.ErrNotFound)
	_, _, err = svc.ByNumber(ctx, "ORDER-000000-0000")
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestListByUser(t *testing.T) {
	fake := storagetest.New()
	svc := New(fake)
	ctx := context.Background()

	userID := domain.UserID(uuid.New())
	for i := range 3 {
		_, _, err := fake.CreateOrder(ctx, domain.Order{
			UserID: userID,
			Number: fmt.Sprintf("ORDER-250131-%04d", i+1),
			Total:  decimal.NewFromInt(int64(i)),
		}, nil)
		require.NoError(t, err)
	}

	page1, cursor, err := svc.ListByUser(ctx, userID, "", 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotEmpty(t, cursor)
	require.Equal(t, "ORDER-250131-0003", page1[0].Number) // newest first

	page2, cursor, err := svc.ListByUser(ctx, userID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	require.Empty(t, cursor)

	_, _, err = svc.ListByUser(ctx, userID, "not-a-time", 2)
	require.ErrorIs(t, err, serrors.ErrInvalidInput)

	// an unset limit falls back to the default page size
	all, cursor, err := svc.ListByUser(ctx, userID, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Empty(t, cursor)
}
