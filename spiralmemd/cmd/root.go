// Package cmd provides the command-line interface for the spiral memory
// pool engine.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "spiralmemd",
	Short: "Spiralmemd runs a spiral memory pool manager with health " +
		"monitoring and event recording.",
	Long: `Spiralmemd runs a spiral memory pool manager with health ` +
		`monitoring and event recording. It drives a demonstration ` +
		`workload against the manager, serves an inspection API, and ` +
		`records pool events into a SQLite database.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
