// Package ui provides the terminal building blocks shared by the dashboard
// and the one-shot CLI commands.
//
// # Color Scheme
//
// Colors are ANSI codes so they follow the terminal theme:
//
//	ColorSuccess   (green)   - low usage, successful operations
//	ColorWarning   (yellow)  - usage past the warning threshold
//	ColorError     (red)     - usage past the critical threshold, failures
//	ColorPinned    (magenta) - pinned processes
//	ColorMuted     (gray)    - secondary text, timestamps
//
// SetColorMode selects auto, always or never. Auto disables color when
// stdout is not a terminal or NO_COLOR is set.
//
// # Bars and Sparklines
//
// RenderUsageBar and RenderSparkline color by proctable.Thresholds so the
// configured warning and critical levels apply everywhere:
//
//	ui.RenderUsageBar(67.5, 20, th)  // █████████████░░░░░░░  67.5%
//
// # Tables
//
// RenderProcessTable draws a proctable.TableView without any interaction,
// used by the snapshot command. The dashboard builds its own bubbles table.
package ui
