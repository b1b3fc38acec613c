package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"shop/internal/cart"
	"shop/pkg/domain"
	"shop/pkg/logger"
	"shop/pkg/storage"
)

// CartReaperWorker is a River worker that retires abandoned carts. A reap job
// is scheduled when a cart is created, at the abandonment horizon. Because
// cart activity only touches the cart row (it does not reschedule the job),
// the worker re-checks the cart's last activity when it runs: a cart that was
// touched since the job was scheduled is not abandoned yet, so the job snoozes
// itself until one full idle window has passed.
type CartReaperWorker struct {
	river.WorkerDefaults[cart.ReapJobArgs]

	// storage is the persistence layer holding carts.
	storage storage.Storage
	// abandonAfter is how long a cart may sit untouched before it is retired.
	abandonAfter time.Duration
}

// NewCartReaperWorker constructs a CartReaperWorker with the given
// abandonment window.
func NewCartReaperWorker(store storage.Storage, abandonAfter time.Duration) *CartReaperWorker {
	return &CartReaperWorker{
		storage:      store,
		abandonAfter: abandonAfter,
	}
}

// Work handles a single reap job. Carts that are already gone (checked out
// or retired earlier) complete the job with nothing to do.
func (w *CartReaperWorker) Work(ctx context.Context, job *river.Job[cart.ReapJobArgs]) error {
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID), zap.String("cartID", job.Args.CartID))

	id, err := uuid.Parse(job.Args.CartID)
	if err != nil {
		// a malformed ID never becomes valid, retrying is pointless
		return river.JobCancel(fmt.Errorf("invalid cart ID: %w", err)) //nolint: wrapcheck
	}
	cartID := domain.CartID(id)

	userCart, err := w.storage.CartByID(ctx, cartID)
	if err != nil {
		logger.Error(ctx, "error fetching cart", zap.Error(err))

		return fmt.Errorf("could not get cart: %w", err)
	}
	if userCart == nil {
		logger.Debug(ctx, "cart already gone, nothing to reap")

		return nil
	}

	idleSince := userCart.UpdatedAt
	if remaining := time.Until(idleSince.Add(w.abandonAfter)); remaining > 0 {
		logger.Debug(ctx, "cart still active, snoozing",
			zap.Time("lastActivity", idleSince),
			zap.Duration("remaining", remaining))

		return river.JobSnooze(remaining) //nolint: wrapcheck
	}

	if err := w.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		if err := tx.ClearCart(ctx, cartID); err != nil {
			return fmt.Errorf("could not clear cart: %w", err)
		}
		if _, err := tx.RetireCart(ctx, cartID); err != nil {
			return fmt.Errorf("could not retire cart: %w", err)
		}

		return nil
	}); err != nil {
		logger.Error(ctx, "error reaping cart", zap.Error(err))

		return fmt.Errorf("could not reap cart: %w", err)
	}

	logger.Info(ctx, "abandoned cart reaped", zap.Time("lastActivity", idleSince))

	return nil
}
