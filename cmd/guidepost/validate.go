package main

import (
	"context"
	"errors"
	"os"

	"github.com/aretw0/guidepost/internal/cli"
	"github.com/aretw0/guidepost/pkg/registry"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [script]",
	Short: "Check a script for structural, schema and domain errors",
	Long: `Validates a script file (strict decoding, JSON Schema, then domain rules) or a
directory of step documents. With --dashboard the target views are checked
against the built-in dashboard routes; with --views against the given list;
otherwise against host.views when the configuration lists them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		path := cfg.Tour.Script
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			return errors.New("no script given: pass a path or set tour.script")
		}

		views, _ := cmd.Flags().GetStringSlice("views")
		if dashboard, _ := cmd.Flags().GetBool("dashboard"); dashboard {
			views = registry.DashboardViews
		}
		if len(views) == 0 {
			views = cli.HostViews(cfg.Host)
		}

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			ctx := cli.NewSignalContext(context.Background())
			defer ctx.Cancel()
			return cli.WatchValidate(ctx, path, views, os.Stdout, logger)
		}

		script, err := cli.ValidateScript(cmd.Context(), path, views)
		if err := cli.ReportValidation(os.Stdout, path, script, err); err != nil {
			return errors.New("validation failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringSlice("views", nil, "Known views to check targets against")
	validateCmd.Flags().Bool("dashboard", false, "Check targets against the built-in dashboard views")
	validateCmd.Flags().BoolP("watch", "w", false, "Revalidate whenever the script changes")
}
