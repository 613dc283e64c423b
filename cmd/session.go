package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/grovetools/sheetsync/cli"
	"github.com/grovetools/sheetsync/internal/inspector"
	"github.com/grovetools/sheetsync/pkg/session"
	"github.com/grovetools/sheetsync/pkg/state"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// openSession loads configuration from the standard flags and opens a
// session against the configured backend.
func openSession(cmd *cobra.Command, opts session.Options) (*session.Session, error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	opts.Config = cfg
	return session.Open(cmd.Context(), opts)
}

// printState writes s as JSON with --json, indented when stdout is a
// terminal, and as the inspector's summary otherwise.
func printState(cmd *cobra.Command, s *state.AppState) error {
	out := cmd.OutOrStdout()
	if cli.GetOptions(cmd).JSONOutput {
		enc := json.NewEncoder(out)
		if isTerminal(out) {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(s)
	}
	fmt.Fprintln(out, inspector.Render(s))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
