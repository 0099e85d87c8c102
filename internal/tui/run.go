package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"ethiostartup.com/advisor/internal/session"
)

// Run drives the session in the terminal until the user quits. The sidebar
// scope and the session are released on the way out.
func Run(sess *session.Session, opts Options) error {
	m := New(sess, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
