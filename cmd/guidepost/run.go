package main

import (
	"context"
	"os"

	"github.com/aretw0/guidepost/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a tour from the terminal",
	Long: `Builds the tour and steers it from the terminal: every step is shown as a
card and commands typed on stdin (next, previous, pause, ...) move the tour.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		headless, _ := cmd.Flags().GetBool("headless")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		err = cli.Run(ctx, cfg, logger, cli.RunOptions{
			Input:    os.Stdin,
			Output:   os.Stdout,
			Headless: headless,
			Host:     hostFor(cmd, cfg, logger),
		})
		if ctx.Signal() != nil {
			logger.Info("interrupted", "signal", ctx.Signal())
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("headless", false, "Plain output without banner or help")
	runCmd.Flags().Bool("rehearse", false, "Use a simulated host instead of a browser")
}
