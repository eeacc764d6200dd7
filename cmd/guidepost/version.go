package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/guidepost"
	"github.com/spf13/cobra"
)


var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of guidepost",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("guidepost version %s\n", strings.TrimSpace(guidepost.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
