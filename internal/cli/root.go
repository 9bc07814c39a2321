// Package cli wires the markbook commands: the API server, roster
// management and bulk AI grading.
package cli

import (
	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markbook",
		Short: "Quiz grading and review service",
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRosterCmd())
	cmd.AddCommand(newGradeCmd())
	return cmd
}
