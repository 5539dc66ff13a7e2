package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rpgo/swr-montecarlo/internal/config"
	"github.com/rpgo/swr-montecarlo/internal/domain"
	"github.com/rpgo/swr-montecarlo/internal/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "swrmc",
		Short:        "Monte Carlo safe-withdrawal-rate simulator",
		Long:         "swrmc simulates retirement portfolios under correlated random returns and annual withdrawals, and reports depletion risk, ending values and benchmark comparisons.",
		SilenceUsage: true,
	}
	root.AddCommand(newSimulateCmd(), newPortfoliosCmd(), newExampleConfigCmd())
	return root
}

func newPortfoliosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "portfolios",
		Short: "List the preset portfolios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), output.FormatPresetList(domain.Presets()))
			return err
		},
	}
}

func newExampleConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example-config [file]",
		Short: "Write an example configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "swrmc.yaml"
			if len(args) == 1 {
				filename = args[0]
			}
			parser := config.NewInputParser()
			if err := parser.SaveConfiguration(parser.CreateExampleConfiguration(), filename); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example configuration written to %s\n", filename)
			return nil
		},
	}
}
