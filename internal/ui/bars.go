package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/statdash/internal/proctable"
)

// Bar block characters.
const (
	BarFilled = '█'
	BarEmpty  = '░'
)

// LevelColor maps a usage level to its color.
func LevelColor(level proctable.UsageLevel) lipgloss.Color {
	switch level {
	case proctable.UsageHigh:
		return ColorError
	case proctable.UsageMedium:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// ThresholdColor colors percent against th.
func ThresholdColor(percent float64, th proctable.Thresholds) lipgloss.Color {
	return LevelColor(th.Level(percent))
}

// ClampPercent clamps a percentage to the 0-100 range.
func ClampPercent(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// CalculateBarCounts returns the number of filled and empty characters for a bar.
// Percent should be 0-100, width is the total bar width.
func CalculateBarCounts(percent float64, width int) (filled, empty int) {
	filled = int((percent / 100.0) * float64(width))
	empty = width - filled
	return
}

// BuildBarString builds the raw bar string (without styling) from filled/empty counts.
func BuildBarString(filledCount, emptyCount int) string {
	var sb strings.Builder
	sb.Grow((filledCount + emptyCount) * 3)
	for i := 0; i < filledCount; i++ {
		sb.WriteRune(BarFilled)
	}
	for i := 0; i < emptyCount; i++ {
		sb.WriteRune(BarEmpty)
	}
	return sb.String()
}

// RenderUsageBar draws a colored bar with the percentage after it, e.g.
// "████░░░░░░  42.0%". Values above 100 fill the bar but print as-is.
func RenderUsageBar(percent float64, width int, th proctable.Thresholds) string {
	if width <= 0 {
		return ""
	}
	filled, empty := CalculateBarCounts(ClampPercent(percent), width)
	bar := lipgloss.NewStyle().
		Foreground(ThresholdColor(percent, th)).
		Render(BuildBarString(filled, empty))
	return fmt.Sprintf("%s %5.1f%%", bar, percent)
}
