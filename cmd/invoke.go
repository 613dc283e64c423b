package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grovetools/sheetsync/cli"
	"github.com/grovetools/sheetsync/command"
	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/pkg/session"
	"github.com/grovetools/sheetsync/tui/theme"
	"github.com/spf13/cobra"
)

func NewInvokeCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "invoke <command> [json-args]",
		Short: "Send one command to the editor and print the resulting state",
		Long: `Sends a single named command to the editor backend, applies the patch it
returns to a fresh snapshot, and prints the result.

Arguments are a JSON object. Unknown fields and invalid values are refused
before anything is sent.`,
		Example: `  # Undo the last edit
  sheetsync invoke undo

  # Select the first East keyframe
  sheetsync invoke select_keyframe '{"direction":"East","index":0}'

  # Every command name
  sheetsync invoke --list`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return printCommandList(cmd)
			}
			if len(args) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "a command name is required (see --list)")
			}

			var raw json.RawMessage
			if len(args) == 2 {
				raw = json.RawMessage(args[1])
			}
			c, err := command.Build(args[0], raw)
			if err != nil {
				return err
			}

			sess, err := openSession(cmd, session.Options{})
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx := cmd.Context()
			if err := sess.Gateway.Invoke(ctx, c).Wait(ctx); err != nil {
				return err
			}
			return printState(cmd, sess.Store.Snapshot())
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List the commands the backend accepts")
	return cmd
}

func printCommandList(cmd *cobra.Command) error {
	names := command.Names()
	out := cmd.OutOrStdout()
	if cli.GetOptions(cmd).JSONOutput {
		return json.NewEncoder(out).Encode(names)
	}

	t := theme.DefaultTheme
	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}
	for _, name := range names {
		line := t.Key.Render(name)
		if command.DocumentScoped(name) {
			line += strings.Repeat(" ", width-len(name)+2) + t.Muted.Render("needs an open document")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
