package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

// sparklineGap marks a missing reading.
const sparklineGap = '·'

var sparklineBlockRunes = []rune(sparklineBlocks)

// Sparkline renders 0-100 readings as one block character each, on a fixed
// scale. NaN readings render as a gap and out-of-range readings are clamped.
// The line is colored by the highest reading's threshold. It returns "" when
// there is no reading at all.
func Sparkline(data []float64) string {
	top := len(sparklineBlockRunes) - 1
	highest := math.Inf(-1)

	var sb strings.Builder
	sb.Grow(len(data) * 3)
	for _, v := range data {
		if math.IsNaN(v) {
			sb.WriteRune(sparklineGap)
			continue
		}
		v = clampPercent(v)
		highest = math.Max(highest, v)
		sb.WriteRune(sparklineBlockRunes[int(v/100*float64(top)+0.5)])
	}
	if math.IsInf(highest, -1) {
		return ""
	}

	return lipgloss.NewStyle().Foreground(ThresholdColor(highest)).Render(sb.String())
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
