// Package cli implements the Twin command-line interface using Cobra.
// Each subcommand maps to an operation on the local aggregate (status,
// habit, plan, inbox) or to the daemon lifecycle (serve).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "twin",
	Short: "Twin, your gamified virtual companion",
	Long: `Twin is a local-first virtual twin: plan your day, track habits,
earn XP and watch your twin level up. State lives in a local SQLite
cache and syncs to the hosted store when one is configured.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
