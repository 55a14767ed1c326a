// Package main provides the pulse CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "pulse",
		Short: "Resilience scoring for open-source projects",
		Long: `Pulse computes 0-100 resilience scores from code activity, dependency
health, on-chain governance, and locked economic value. It evaluates
metric bundles offline or talks to a running pulsed daemon.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newScoreCmd(),
		newProjectsCmd(),
		newTrendCmd(),
		newRecalibrateCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
