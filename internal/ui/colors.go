package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
)

// Text colors for content hierarchy
const (
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Gauge thresholds, in percent.
const (
	WarnPercent = 60.0
	CritPercent = 80.0
)

// ThresholdColor picks a color for a 0-100 reading.
func ThresholdColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CritPercent:
		return ColorError
	case percent >= WarnPercent:
		return ColorWarning
	default:
		return ColorSuccess
	}
}
