package monitor

import "github.com/charmbracelet/lipgloss"

// Dashboard color palette
const (
	ColorBorder = lipgloss.Color("#2A2A4A")

	ColorCritical = lipgloss.Color("#FF0055")
	ColorWarning  = lipgloss.Color("#FFAA00")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
	ColorGraph  = lipgloss.Color("#00FFFF")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	SelectorActiveStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	SelectorInactiveStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted)

	SummaryStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	NoDataStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	AgeStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)
