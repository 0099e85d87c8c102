package tui

import "github.com/charmbracelet/lipgloss"

const (
	headerHeight = 2
	footerHeight = 1
	sidebarWidth = 38
)

var (
	colorPrimary = lipgloss.Color("33")
	colorMuted   = lipgloss.Color("245")
	colorGreen   = lipgloss.Color("42")
	colorYellow  = lipgloss.Color("220")
	colorRed     = lipgloss.Color("203")
	colorBlue    = lipgloss.Color("75")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	keyStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	mainStyle = lipgloss.NewStyle().Padding(0, 1)

	readyBox = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorGreen).
			Foreground(colorGreen).
			Padding(0, 1)

	warnBox = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorYellow).
		Foreground(colorYellow).
		Padding(0, 1)

	infoBox = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorBlue).
		Foreground(colorBlue).
		Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	overlayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)
