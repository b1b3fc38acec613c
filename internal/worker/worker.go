package worker

import (
	"context"
	"fmt"
	"log/slog"
	"shop/internal/config"
	"shop/pkg/logger"
	"shop/pkg/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"
)

// Start wires up the background job runtime: it registers all workers and
// starts a River client on the given pool. The returned client should be
// stopped through its Stop method during shutdown.
func Start(ctx context.Context,
	dbPool *pgxpool.Pool,
	store storage.Storage,
	cfg *config.Config) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewCartReaperWorker(store, cfg.Cart.AbandonAfter))

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.Worker.MaxWorkers},
		},
		Workers: workers,
		Logger:  slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
