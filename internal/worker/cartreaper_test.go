package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"

	"shop/internal/cart"
	"shop/internal/worker"
	"shop/pkg/domain"
	"shop/pkg/logger"
	"shop/pkg/storage/storagetest"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func makeJob(id int64, cartID string) *river.Job[cart.ReapJobArgs] {
	return &river.Job[cart.ReapJobArgs]{
		JobRow: &rivertype.JobRow{ID: id},
		Args:   cart.ReapJobArgs{CartID: cartID},
	}
}

func seedCart(t *testing.T, fake *storagetest.Fake) domain.CartID {
	t.Helper()
	ctx := context.Background()

	user, err := fake.CreateUser(ctx, domain.User{Handle: "shopper", Email: "shopper@example.com"})
	require.NoError(t, err)

	userCart, err := fake.CreateCart(ctx, domain.Cart{UserID: user.ID})
	require.NoError(t, err)

	product, err := fake.CreateProduct(ctx, domain.Product{Name: "Widget", Stock: 5})
	require.NoError(t, err)

	_, err = fake.UpsertCartItem(ctx, domain.CartItem{
		CartID:    userCart.ID,
		ProductID: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)

	return userCart.ID
}

func TestCartReaperWorker_Work_MalformedIDCancels(t *testing.T) {
	w := worker.NewCartReaperWorker(storagetest.New(), time.Hour)

	err := w.Work(context.Background(), makeJob(1, "not-a-uuid"))
	require.Error(t, err)
	var cancelErr *river.JobCancelError
	require.ErrorAs(t, err, &cancelErr)
}

func TestCartReaperWorker_Work_MissingCartCompletes(t *testing.T) {
	w := worker.NewCartReaperWorker(storagetest.New(), time.Hour)

	require.NoError(t, w.Work(context.Background(), makeJob(2, uuid.NewString())))
}

func TestCartReaperWorker_Work_RecentActivitySnoozes(t *testing.T) {
	fake := storagetest.New()
	// Stamp the cart as touched ten minutes ago, well inside the window.
	fake.SetClock(time.Now().Add(-10 * time.Minute))
	cartID := seedCart(t, fake)

	w := worker.NewCartReaperWorker(fake, time.Hour)

	err := w.Work(context.Background(), makeJob(3, uuid.UUID(cartID).String()))
	require.Error(t, err)
	var snoozeErr *river.JobSnoozeError
	require.ErrorAs(t, err, &snoozeErr)
	require.Greater(t, snoozeErr.Duration, 45*time.Minute)
	require.LessOrEqual(t, snoozeErr.Duration, time.Hour)

	// Nothing was reaped.
	still, err := fake.CartByID(context.Background(), cartID)
	require.NoError(t, err)
	require.NotNil(t, still)
}

func TestCartReaperWorker_Work_IdleCartReaped(t *testing.T) {
	fake := storagetest.New()
	// The fake clock starts well in the past, so the cart is long idle.
	cartID := seedCart(t, fake)

	w := worker.NewCartReaperWorker(fake, time.Hour)

	require.NoError(t, w.Work(context.Background(), makeJob(4, uuid.UUID(cartID).String())))

	gone, err := fake.CartByID(context.Background(), cartID)
	require.NoError(t, err)
	require.Nil(t, gone)

	lines, err := fake.CartLines(context.Background(), cartID)
	require.NoError(t, err)
	require.Empty(t, lines)

	// Running the job again after the cart is gone is a no-op.
	require.NoError(t, w.Work(context.Background(), makeJob(5, uuid.UUID(cartID).String())))
}
