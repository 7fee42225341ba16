// Package commands wires the CLI entrypoints of the evaluation backend.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tachyon-eval",
		Short: "Evaluation backend for onboarded model usecases",
	}

	rootCmd.AddCommand(
		NewServeCommand(),
		NewSeedCommand(),
		NewVersionCommand(),
	)

	return rootCmd
}
