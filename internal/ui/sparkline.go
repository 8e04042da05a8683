package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// Latency thresholds for sparkline coloring, in milliseconds.
const (
	latencyWarnMs = 150.0
	latencyBadMs  = 500.0
)

// RenderSparkline draws a latency history (milliseconds, oldest first) as a
// sparkline. The width parameter caps how many of the most recent samples
// are shown. The line is colored by the newest sample: green under 150ms,
// yellow under 500ms, red above.
func RenderSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	if len(data) > width {
		data = data[len(data)-width:]
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	var sb strings.Builder
	sb.Grow(len(data) * 4) // UTF-8 block chars are up to 3 bytes

	numLevels := len(sparklineBlockRunes)
	valueRange := maxVal - minVal

	for _, v := range data {
		var level int
		if valueRange == 0 {
			level = numLevels / 2
		} else {
			normalized := (v - minVal) / valueRange
			level = int(normalized * float64(numLevels-1))
			if level < 0 {
				level = 0
			} else if level >= numLevels {
				level = numLevels - 1
			}
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	if !ColorEnabled() {
		return sb.String()
	}
	style := lipgloss.NewStyle().Foreground(latencyColor(data[len(data)-1]))
	return style.Render(sb.String())
}

// latencyColor maps a latency sample in milliseconds to a semantic color.
func latencyColor(ms float64) lipgloss.Color {
	switch {
	case ms >= latencyBadMs:
		return ColorError
	case ms >= latencyWarnMs:
		return ColorWarning
	default:
		return ColorSuccess
	}
}
