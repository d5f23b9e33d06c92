package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zulubridge/internal/bridge"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bridge and control API versions",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "zulubridge %s (client API %s)\n", version, bridge.DefaultClientAPIVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
