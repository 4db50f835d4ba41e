package proctable

import (
	"fmt"
	"strings"
)

const (
	mib = 1024 * 1024
	gib = 1024 * 1024 * 1024

	// NameLimit is the longest network interface name shown before truncation.
	NameLimit = 20
)

// FormatFixed renders v with two decimals.
func FormatFixed(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatMB renders a byte count in mebibytes.
func FormatMB(b uint64) string {
	return fmt.Sprintf("%.2f MB", float64(b)/mib)
}

// FormatGB renders a byte count in gibibytes.
func FormatGB(b uint64) string {
	return fmt.Sprintf("%.2f GB", float64(b)/gib)
}

// FormatDiskGB renders a byte count in decimal gigabytes, the unit disk
// vendors and df -H use.
func FormatDiskGB(b uint64) string {
	return fmt.Sprintf("%.2f GB", float64(b)/1e9)
}

// FormatUptime renders seconds as "1d 2h 3m 4s", omitting units that are zero.
func FormatUptime(seconds uint64) string {
	days := seconds / 86400
	hours := seconds % 86400 / 3600
	minutes := seconds % 3600 / 60
	secs := seconds % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if secs > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}
	return strings.Join(parts, " ")
}

// TruncateName shortens s to NameLimit characters plus an ellipsis.
func TruncateName(s string) string {
	r := []rune(s)
	if len(r) <= NameLimit {
		return s
	}
	return string(r[:NameLimit]) + "..."
}

// UsageLevel buckets a percentage for bar coloring.
type UsageLevel int

const (
	UsageLow UsageLevel = iota
	UsageMedium
	UsageHigh
)

// String returns the level name.
func (l UsageLevel) String() string {
	switch l {
	case UsageHigh:
		return "high"
	case UsageMedium:
		return "medium"
	default:
		return "low"
	}
}

// Thresholds are the percentages at which usage turns medium and high.
type Thresholds struct {
	Medium float64
	High   float64
}

// DefaultThresholds marks 50% as medium and 80% as high.
var DefaultThresholds = Thresholds{Medium: 50, High: 80}

// Level classifies percent against t. Both bounds are inclusive.
func (t Thresholds) Level(percent float64) UsageLevel {
	switch {
	case percent >= t.High:
		return UsageHigh
	case percent >= t.Medium:
		return UsageMedium
	default:
		return UsageLow
	}
}

// LevelFor classifies percent with DefaultThresholds.
func LevelFor(percent float64) UsageLevel {
	return DefaultThresholds.Level(percent)
}
