package inspector

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/sheetsync/pkg/session"
)

// Run shows the inspector for sess until the user quits or ctx ends. The
// session's dispatcher is attached for the duration of the run.
func Run(ctx context.Context, sess *session.Session, opts ...tea.ProgramOption) error {
	m := New(sess.Store, sess.Gateway, sess.Dispatcher)
	defer m.Close()

	sess.Dispatcher.Attach(ctx, m.KeySource())
	defer sess.Dispatcher.Detach()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
