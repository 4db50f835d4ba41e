package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/statdash/internal/proctable"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// RenderSparkline draws the most recent width values of a 0-100 series.
// Heights are absolute so a flat 5% line sits at the bottom instead of the
// middle. The color follows the last value against th.
func RenderSparkline(data []float64, width int, th proctable.Thresholds) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	if len(data) > width {
		data = data[len(data)-width:]
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	numLevels := len(sparklineBlockRunes)
	for _, v := range data {
		level := int(ClampPercent(v) / 100 * float64(numLevels-1))
		sb.WriteRune(sparklineBlockRunes[level])
	}

	color := ThresholdColor(data[len(data)-1], th)
	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}
