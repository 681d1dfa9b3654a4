package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/KevinKickass/OpenDACCore/internal/system"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST, websocket and gRPC host surfaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		lifecycle, err := system.NewLifecycleManager(ctx, cfg, logger)
		if err != nil {
			return err
		}

		if err := lifecycle.Start(); err != nil {
			_ = lifecycle.Shutdown(context.Background())
			return err
		}

		logger.Info("OpenDACCore started successfully")

		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := lifecycle.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", zap.Error(err))
			return err
		}

		logger.Info("OpenDACCore stopped successfully")
		return nil
	},
}
