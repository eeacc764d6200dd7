package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/guidepost/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the tour to AI agents as MCP tools (tour_status, tour_command,
tour_graph) and resources (guidepost://script, guidepost://graph).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.ServeMCP(ctx, cfg, logger, cli.MCPOptions{
			Transport: transport,
			Addr:      fmt.Sprintf(":%d", port),
			BaseURL:   fmt.Sprintf("http://localhost:%d", port),
			Input:     os.Stdin,
			Output:    os.Stdout,
			Host:      hostFor(cmd, cfg, logger),
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", cli.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
	mcpCmd.Flags().Bool("rehearse", false, "Use a simulated host instead of a browser")
}
