package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"ethiostartup.com/advisor/internal/sidebar"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.MouseMsg:
		switch {
		case tea.MouseEvent(msg).IsWheel():
			if !m.page.ScrollLocked() {
				var cmd tea.Cmd
				m.viewport, cmd = m.viewport.Update(msg)
				cmds = append(cmds, cmd)
			}
		case msg.Action == tea.MouseActionPress:
			m.page.dispatchPointer(sidebar.PointerEvent{X: msg.X, Y: msg.Y})
		}

	case tea.KeyMsg:
		m.page.dispatchKey(sidebar.KeyEvent{Key: msg.String()})
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case mountedMsg:
		m.mounted = true

	case actionDoneMsg:
		m.logger.Debug("action finished", zap.String("action", msg.action))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.syncContent()
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	docs := m.session.Documents
	qa := m.session.Questions

	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyCtrlB:
		m.sidebar.Toggle()
		return m, nil

	case tea.KeyCtrlX:
		m.sidebar.Close()
		return m, nil

	case tea.KeyCtrlP:
		if docs.Processing() {
			return m, nil
		}
		return m, m.run("process", docs.TriggerProcess)

	case tea.KeyCtrlR:
		if docs.Processing() || !docs.CanReprocess() {
			return m, nil
		}
		return m, m.run("reprocess", docs.TriggerReprocess)

	case tea.KeyCtrlL:
		if !m.session.Status.DocsProcessed() || len(m.session.History.Records()) == 0 {
			return m, nil
		}
		return m, m.clearHistory()

	case tea.KeyPgUp, tea.KeyPgDown:
		if m.page.ScrollLocked() {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyEsc:
		// Escape belongs to the sidebar observer while it is open.
		return m, nil

	case tea.KeyEnter:
		if !m.qaVisible() {
			return m, nil
		}
		qa.SetQuestion(m.input.Value())
		if !qa.CanAsk() {
			return m, nil
		}
		return m, m.run("ask", qa.Ask)
	}

	if !m.qaVisible() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	qa.SetQuestion(m.input.Value())
	return m, cmd
}

func (m *Model) resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.width = width
	m.height = height
	m.page.setColumns(width)

	mainWidth := m.mainWidth()
	m.viewport.Width = mainWidth
	m.viewport.Height = max(height-headerHeight-footerHeight, 1)
	m.input.Width = max(mainWidth-8, 10)

	wrap := max(mainWidth-6, 20)
	if m.renderer == nil || m.rendererWidth != wrap {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			m.logger.Warn("markdown renderer unavailable", zap.Error(err))
			return
		}
		m.renderer = r
		m.rendererWidth = wrap
	}
}

// mainWidth is the column count left for the question panel.
func (m Model) mainWidth() int {
	if m.page.Layout() == sidebar.Wide {
		return max(m.width-sidebarWidth, 20)
	}
	return max(m.width, 20)
}

// syncContent pushes the current cells into the scrollable main panel and
// records where the sidebar will be drawn for hit testing.
func (m *Model) syncContent() {
	wide := m.page.Layout() == sidebar.Wide
	visible := wide || m.sidebar.IsOpen()
	m.page.setSidebarBounds(visible, headerHeight, min(sidebarWidth, max(m.width, 0)))

	m.viewport.SetContent(m.renderMain())
}
