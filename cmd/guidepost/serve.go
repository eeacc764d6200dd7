package main

import (
	"context"

	"github.com/aretw0/guidepost/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a tour in the browser and expose its HTTP control API",
	Long: `Opens the configured application in a browser, builds the tour and serves
the control API (commands, snapshots, Server-Sent Events, Mermaid graph and,
with server.metrics, Prometheus metrics).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		start, _ := cmd.Flags().GetBool("start")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.Serve(ctx, cfg, logger, cli.ServeOptions{
			Start: start,
			Host:  hostFor(cmd, cfg, logger),
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().Bool("start", false, "Start the tour once the host is ready")
	serveCmd.Flags().Bool("rehearse", false, "Use a simulated host instead of a browser")
}
