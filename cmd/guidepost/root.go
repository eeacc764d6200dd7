package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/guidepost/internal/cli"
	"github.com/aretw0/guidepost/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "guidepost",
	Short: "Guidepost runs guided product tours over a web application",
	Long: `Guidepost walks users through a web application step by step: it navigates
between views, waits for each target element, keeps a highlight outline on it
and can advance on its own. Scripts are YAML/JSON files or directories of
Markdown step documents.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (default "+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().StringP("script", "s", "", "Script file or step directory (overrides tour.script)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// setup loads the configuration and logger shared by every command.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	script, _ := cmd.Flags().GetString("script")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := cli.LoadConfig(cli.Options{ConfigPath: configPath, Script: script, Debug: debug})
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := cli.NewLogger(os.Stderr, cfg.Logging)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// hostFor returns the rehearsal host when --rehearse is set, else the browser.
func hostFor(cmd *cobra.Command, cfg config.Config, logger *slog.Logger) cli.HostFactory {
	if rehearse, _ := cmd.Flags().GetBool("rehearse"); rehearse {
		return cli.RehearsalHost()
	}
	return cli.BrowserHost(cfg.Host, logger)
}
