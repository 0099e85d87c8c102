package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"ethiostartup.com/advisor/internal/remote"
	"ethiostartup.com/advisor/internal/sidebar"
)

var legalSources = []string{
	"Ethiopian Commercial Code (2021)",
	"Investment Proclamation No. 1180/2020",
	"Trade Registration Proclamation No. 980/2016",
	"Tax Proclamations",
}

var commonQuestions = []struct {
	topic     string
	questions []string
}{
	{"🏢 Business Registration", []string{
		"How do I register a private limited company?",
		"What's the minimum capital requirement?",
		"What documents do I need?",
	}},
	{"📋 Licensing & Permits", []string{
		"How do I get a trade license?",
	}},
	{"🌍 Foreign Investment", []string{
		"What are the foreign investment rules?",
		"Can foreigners own 100% of a company?",
		"What sectors are open to foreigners?",
	}},
	{"💰 Tax & Compliance", []string{
		"What are the tax obligations for startups?",
		"When do I need to register for VAT?",
	}},
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := max(m.height-headerHeight-footerHeight, 1)

	var body string
	switch {
	case m.page.Layout() == sidebar.Wide:
		side := m.renderSidebar(bodyHeight)
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, mainStyle.Render(m.viewport.View()))
	case m.sidebar.IsOpen():
		side := m.renderSidebar(bodyHeight)
		shade := overlayStyle.Render(strings.Repeat("░", max(m.width-lipgloss.Width(side), 0)))
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, shade)
	default:
		body = mainStyle.Render(m.viewport.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("🇪🇹 Ethio Startup Advisor")
	if m.page.Layout() == sidebar.Narrow {
		menu := "☰ menu"
		if m.sidebar.IsOpen() {
			menu = "✕ close"
		}
		title += "  " + keyStyle.Render("ctrl+b") + " " + mutedStyle.Render(menu)
	}
	tagline := mutedStyle.Render("Business registration, licensing and investment rules, from official proclamations")
	return lipgloss.JoinVertical(lipgloss.Left, title, tagline)
}

func (m Model) renderFooter() string {
	hints := []string{
		keyStyle.Render("ctrl+p") + " process",
		keyStyle.Render("pgup/pgdn") + " scroll",
		keyStyle.Render("ctrl+c") + " quit",
	}
	if m.page.ScrollLocked() {
		hints = append(hints, mutedStyle.Render("scroll locked"))
	}
	switch {
	case !m.mounted:
		hints = append(hints, m.spinner.View()+" connecting")
	case m.busy():
		hints = append(hints, m.spinner.View()+" working")
	}
	return mutedStyle.Render(strings.Join(hints, " · "))
}

func (m Model) renderSidebar(height int) string {
	width := min(sidebarWidth, max(m.width, 0))
	inner := max(width-4, 10)

	var b strings.Builder
	heading := "📂 Ethio Startup Advisor"
	if m.page.Layout() == sidebar.Narrow {
		heading += "  " + keyStyle.Render("ctrl+x") + " close"
	}
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n\n")

	docs := m.session.Documents
	if m.session.Status.DocsProcessed() {
		b.WriteString(readyBox.Width(inner).Render("✅ Legal Advisor Ready\nAsk questions about Ethiopian business law!"))
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("📚 Legal Sources:"))
		b.WriteString("\n")
		for _, src := range legalSources {
			b.WriteString(infoBox.UnsetBorderStyle().Padding(0).Render("• " + src))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if docs.Processing() {
			b.WriteString(m.spinner.View() + " 🔄 Reprocessing...")
		} else {
			b.WriteString(keyStyle.Render("ctrl+r") + " 🔄 Reprocess Documents")
		}
		b.WriteString("\n")
		b.WriteString(m.renderRecent(inner))
	} else {
		b.WriteString(warnBox.Width(inner).Render("No knowledge base found. Process documents to get started."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if docs.Processing() {
		b.WriteString(m.spinner.View() + " 📚 Processing...")
	} else {
		b.WriteString(keyStyle.Render("ctrl+p") + " 📚 Process Documents")
	}
	b.WriteString("\n")

	if msg := docs.StatusMessage(); msg != "" {
		b.WriteString("\n")
		b.WriteString(infoBox.Width(inner).Render(msg))
		b.WriteString("\n")
	}

	return sidebarStyle.Width(width - 2).Height(max(height-2, 1)).Render(b.String())
}

func (m Model) renderRecent(width int) string {
	recent := m.session.History.Recent()
	notice := m.session.History.Notice()
	if len(recent) == 0 {
		if notice == "" {
			return ""
		}
		return "\n" + mutedStyle.Render(notice) + "\n"
	}

	var b strings.Builder
	b.WriteString(sectionStyle.Render("💬 Recent Questions"))
	b.WriteString("  " + keyStyle.Render("ctrl+l") + " " + errorStyle.Render("Clear"))
	b.WriteString("\n")
	for _, rec := range recent {
		b.WriteString(lipgloss.NewStyle().Width(width).Render(rec.Question))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(formatTimestamp(rec.Timestamp)))
		b.WriteString("\n")
	}
	if notice != "" {
		b.WriteString(mutedStyle.Render(notice))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMain() string {
	width := max(m.viewport.Width-2, 20)

	var b strings.Builder
	b.WriteString(titleStyle.Render("💬 Ask Your Startup Questions"))
	b.WriteString("\n\n")

	if !m.session.Status.DocsProcessed() {
		b.WriteString(warnBox.Width(width - 2).Render(
			"⚠️ Legal Advisor Not Ready\n" +
				"Please load your Ethiopian legal documents first using the sidebar. " +
				"Once loaded, I'll be ready to advise you on business registration and compliance."))
		return b.String()
	}

	b.WriteString(readyBox.Width(width - 2).Render(
		"🚀 Ready to Advise!\nAsk me anything about Ethiopian startups, business registration, or entrepreneurship."))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("🔍 Common Questions You Can Ask:"))
	b.WriteString("\n")
	for _, group := range commonQuestions {
		b.WriteString(group.topic + ":\n")
		for _, q := range group.questions {
			b.WriteString(mutedStyle.Render("  • " + q))
			b.WriteString("\n")
		}
	}

	b.WriteString(sectionStyle.Render("💭 Ask your startup question:"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	qa := m.session.Questions
	switch {
	case qa.Loading():
		b.WriteString(m.spinner.View() + " 🤔 Searching...")
	case qa.CanAsk():
		b.WriteString(keyStyle.Render("enter") + " Ask Question")
	default:
		b.WriteString(mutedStyle.Render("enter Ask Question"))
	}
	b.WriteString("\n")

	if answer := qa.Answer(); answer != "" {
		b.WriteString(sectionStyle.Render("📋 Answer:"))
		b.WriteString("\n")
		b.WriteString(m.renderAnswer(answer))
		b.WriteString("\n")
		b.WriteString(infoBox.Width(width - 2).Render("💡 Tip: Ask follow-up questions about your startup journey in Ethiopia!"))
	}
	return b.String()
}

// renderAnswer renders answer markdown, reusing the last result while the
// text and wrap width are unchanged.
func (m Model) renderAnswer(answer string) string {
	if strings.HasPrefix(answer, remote.FailureMarker) {
		return errorStyle.Render(answer)
	}
	if m.renderer == nil {
		return answer
	}
	if c := m.answerCache; c.source == answer && c.width == m.rendererWidth {
		return c.out
	}
	out, err := m.renderer.Render(answer)
	if err != nil {
		return answer
	}
	out = strings.TrimRight(out, "\n")
	*m.answerCache = renderedAnswer{source: answer, width: m.rendererWidth, out: out}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// formatTimestamp shows the local time of day for a record, or the raw value
// when it cannot be parsed.
func formatTimestamp(raw string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Local().Format("15:04:05")
		}
	}
	return raw
}
