package cmd

import (
	"context"
	"fmt"

	"github.com/KevinKickass/OpenDACCore/internal/board"
	"github.com/KevinKickass/OpenDACCore/internal/config"
	"github.com/KevinKickass/OpenDACCore/internal/system"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed <board.yaml>",
	Short: "Write the calibration topics of a board description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context(), cfg, logger, args[0])
	},
}

func runSeed(ctx context.Context, cfg *config.Config, logger *zap.Logger, path string) error {
	b, err := board.Load(path)
	if err != nil {
		return err
	}

	store, closeStore, err := system.OpenTopicStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open topic store: %w", err)
	}
	defer closeStore()

	return board.Seed(ctx, b, store, logger)
}
