package main

import (
	"fmt"

	"github.com/aretw0/guidepost/internal/cli"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/spf13/cobra"
)

var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "Inspect or change the durable \"tour active\" signal",
	Long: `The signal makes a tour resume when the host reloads. These commands operate
on the configured store (memory, file or redis).`,
}

func signalAction(run func(cmd *cobra.Command, s signalStore) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		store, closeStore, err := cli.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer closeStore()
		return run(cmd, store)
	}
}

var signalStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print whether a tour is active",
	RunE: signalAction(func(cmd *cobra.Command, s signalStore) error {
		active, err := s.Active(cmd.Context())
		if err != nil {
			return err
		}
		if active {
			fmt.Println("active")
		} else {
			fmt.Println("inactive")
		}
		return nil
	}),
}

var signalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Request a tour on the host's next load",
	RunE: signalAction(func(cmd *cobra.Command, s signalStore) error {
		return s.SetActive(cmd.Context())
	}),
}

var signalClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the signal",
	RunE: signalAction(func(cmd *cobra.Command, s signalStore) error {
		return s.Clear(cmd.Context())
	}),
}

func init() {
	rootCmd.AddCommand(signalCmd)
	signalCmd.AddCommand(signalStatusCmd, signalSetCmd, signalClearCmd)
}

type signalStore = ports.SignalStore
