// Package tui is the terminal view of an advisor session. It renders the
// session cells and turns key and mouse input into controller intents.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"ethiostartup.com/advisor/internal/session"
	"ethiostartup.com/advisor/internal/sidebar"
)

type Options struct {
	// CellWidthPx is the logical pixel width of one terminal column, used to
	// place the terminal against the sidebar's narrow breakpoint.
	CellWidthPx int
	Logger      *zap.Logger
}

// Async results. Controllers write their own cells; these only wake the loop.
type (
	mountedMsg    struct{}
	actionDoneMsg struct{ action string }
)

type Model struct {
	session *session.Session
	sidebar *sidebar.Controller
	page    *page
	logger  *zap.Logger

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	renderer      *glamour.TermRenderer
	rendererWidth int
	answerCache   *renderedAnswer

	width   int
	height  int
	mounted bool
}

type renderedAnswer struct {
	source string
	width  int
	out    string
}

func New(sess *session.Session, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pg := newPage(opts.CellWidthPx)

	in := textinput.New()
	in.Placeholder = "e.g., What's the minimum capital for a private limited company?"
	in.Prompt = "💭 "
	in.CharLimit = 0
	in.Width = 60
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = keyStyle

	vp := viewport.New(80, 20)
	vp.SetContent("")

	return Model{
		session:     sess,
		sidebar:     sidebar.New(pg, pg, logger),
		page:        pg,
		logger:      logger.Named("tui"),
		input:       in,
		viewport:    vp,
		spinner:     sp,
		answerCache: &renderedAnswer{},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.mount(), m.spinner.Tick, textinput.Blink)
}

// Close releases everything the view holds on the page and cancels the
// session's in-flight work.
func (m Model) Close() {
	m.sidebar.Dispose()
	m.session.Close()
}

func (m Model) mount() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		sess.Mount()
		return mountedMsg{}
	}
}

func (m Model) run(action string, fn func(ctx context.Context) bool) tea.Cmd {
	ctx := m.session.Context()
	logger := m.logger
	return func() tea.Msg {
		if !fn(ctx) {
			logger.Debug("action skipped", zap.String("action", action))
		}
		return actionDoneMsg{action: action}
	}
}

func (m Model) clearHistory() tea.Cmd {
	history := m.session.History
	return m.run("clear_history", func(ctx context.Context) bool {
		history.Clear(ctx)
		return true
	})
}

// qaVisible reports whether the question panel is on screen and accepting
// input: the knowledge base must be ready and no overlay may cover it.
func (m Model) qaVisible() bool {
	if !m.session.Status.DocsProcessed() {
		return false
	}
	return !m.overlayActive()
}

func (m Model) overlayActive() bool {
	return m.sidebar.IsOpen() && m.page.Layout() == sidebar.Narrow
}

func (m Model) busy() bool {
	return m.session.Documents.Processing() || m.session.Questions.Loading()
}
