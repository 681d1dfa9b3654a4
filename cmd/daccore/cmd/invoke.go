package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/KevinKickass/OpenDACCore/internal/config"
	"github.com/KevinKickass/OpenDACCore/internal/dac"
	"github.com/KevinKickass/OpenDACCore/internal/notify"
	"github.com/KevinKickass/OpenDACCore/internal/system"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var inputFile string

var invokeCmd = &cobra.Command{
	Use:       "invoke update|tx_disable",
	Short:     "Run one actor function and print its result",
	Long:      `Run one actor function against the configured topic store. The envelope is read from --input ("-" for stdin); user messages go to the log.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{dac.FunctionUpdate, dac.FunctionTxDisable},
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if inputFile != "-" {
			f, err := os.Open(inputFile)
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()
			in = f
		}
		return runInvoke(cmd.Context(), cfg, logger, args[0], in, cmd.OutOrStdout())
	},
}

func runInvoke(ctx context.Context, cfg *config.Config, logger *zap.Logger, function string, in io.Reader, out io.Writer) error {
	input, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	store, closeStore, err := system.OpenTopicStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open topic store: %w", err)
	}
	defer closeStore()

	actor, err := dac.NewActor(store, notify.NewLogNotifier(logger), logger.Named(cfg.Actor.Name))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, string(actor.Call(ctx, function, input)))
	return err
}

func init() {
	invokeCmd.Flags().StringVarP(&inputFile, "input", "i", "-", `request envelope file, "-" for stdin`)
}
