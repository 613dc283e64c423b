package cmd

import (
	"github.com/grovetools/sheetsync/pkg/session"
	"github.com/spf13/cobra"
)

func NewStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Fetch and print the editor's current state",
		Long: `Connects to the editor backend, fetches a full snapshot and prints it.

With --json the snapshot is printed exactly as the backend sent it, which is
the tree every later patch is addressed against.`,
		Example: `  # Summary of open documents and the current selection
  sheetsync state

  # Raw snapshot for scripts
  sheetsync state --json | jq '.documents[].path'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, session.Options{})
			if err != nil {
				return err
			}
			defer sess.Close()

			return printState(cmd, sess.Store.Snapshot())
		},
	}
}
