package cmd

import (
	"github.com/grovetools/sheetsync/cli"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the sheetsync command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"sheetsync",
		"Mirror and drive a sprite-sheet editor's state from the terminal",
	)

	rootCmd.AddCommand(NewStateCmd())
	rootCmd.AddCommand(NewInvokeCmd())
	rootCmd.AddCommand(NewInspectCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewPathsCmd())
	rootCmd.AddCommand(cli.NewVersionCommand("sheetsync"))

	cli.ApplyStyledHelpRecursive(rootCmd)
	return rootCmd
}
