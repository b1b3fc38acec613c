package main

import (
	"context"
	"os/signal"
	"shop/internal/config"
	"shop/internal/worker"
	"shop/pkg/logger"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// workCommand constructs the 'work' subcommand that runs the background job
// workers (abandoned cart reaping) until interrupted.
func workCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "work",
		Short: "Starts background workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			riverClient, err := worker.Start(ctx, strg.Pool, strg, cfg)
			if err != nil {
				logger.Fatal(ctx, "could not start workers", zap.Error(err))
			}
			logger.Info(ctx, "workers started")

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			logger.Info(ctx, "stopping workers...")
			if err := riverClient.Stop(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "could not stop workers", zap.Error(err))
			}
		},
	}

	return cmd
}
