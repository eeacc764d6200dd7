package main

import (
	"context"
	"fmt"

	"github.com/aretw0/guidepost/internal/cli"
	"github.com/aretw0/guidepost/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [script]",
	Short: "Export the tour as a Mermaid diagram",
	Long:  `Loads the script and outputs a Mermaid diagram (graph TD) with one subgraph per view.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		path := cfg.Tour.Script
		if len(args) > 0 {
			path = args[0]
		}

		loader, err := cli.NewScriptLoader(path)
		if err != nil {
			return err
		}
		script, err := loader.LoadScript(context.Background())
		if err != nil {
			return err
		}
		fmt.Print(graph.GenerateMermaid(script, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
