package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/proctable"
	"github.com/rileyhilliard/statdash/internal/stats"
	"github.com/rileyhilliard/statdash/internal/ui"
	"github.com/rileyhilliard/statdash/internal/util"
)

const (
	defaultWidth  = 100
	minNameWidth  = 12
	rowPrefix     = 2
	coreBarWidth  = 10
	coreCellWidth = 24
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder
	b.WriteString(m.renderTop())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderTop is everything above the process viewport.
func (m Model) renderTop() string {
	parts := []string{m.renderHeader()}
	if m.lastErr != nil {
		parts = append(parts, ErrorStyle.Render(ui.SymbolFail+" "+errors.OneLine(m.lastErr)))
	}

	snap := m.store.Snapshot()
	if snap == nil {
		parts = append(parts, MutedStyle.Render(m.spinner.View()+" waiting for the first snapshot"))
		return strings.Join(parts, "\n")
	}

	parts = append(parts,
		m.renderSystemLine(snap),
		m.renderCPU(snap),
		m.renderMemory(snap),
		m.renderFilesystems(snap),
		m.renderNetwork(snap),
	)
	return strings.Join(parts, "\n")
}

// renderHeader renders the title, clock, freshness and refresh state.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("statdash")

	src := ""
	if m.source != nil {
		src = m.source.Describe()
	}

	fields := []string{
		src,
		m.clockNow.Format("15:04:05"),
		"updated " + m.updatedText(),
	}
	if m.autoRefresh {
		fields = append(fields, "every "+m.interval.String())
	} else {
		fields = append(fields, ui.SymbolPaused+" paused")
	}

	line := title + LabelStyle.Render(" | "+strings.Join(fields, " | "))
	if m.inFlight > 0 {
		line += " " + m.spinner.View()
	}
	return HeaderStyle.Render(line)
}

func (m Model) updatedText() string {
	if !m.store.Loaded() {
		return "never"
	}
	at := m.store.UpdatedAt()
	ref := m.clockNow
	if ref.Before(at) {
		ref = at
	}
	return humanize.RelTime(at, ref, "ago", "from now")
}

func (m Model) renderSystemLine(s *stats.Snapshot) string {
	osName := strings.TrimSpace(strings.Join([]string{s.OS.Distro, s.OS.Name, s.OS.Architecture}, " "))
	if osName == "" {
		osName = "unknown OS"
	}
	return MutedStyle.Render(fmt.Sprintf(" %s | up %s | %d %s",
		osName, proctable.FormatUptime(s.Uptime), len(s.Processes), util.Pluralize(len(s.Processes), "process", "processes")))
}

func (m Model) renderCPU(s *stats.Snapshot) string {
	w := m.boxWidth()
	cpu := s.PrimaryCPU()

	var value string
	if cpu.Model != "" {
		value = fmt.Sprintf("%s · %d cores · %s", cpu.Model, cpu.Cores, cpu.MaxFrequency)
	}

	lines := []string{
		SectionHeader("CPU", value, w),
		SectionContentLine(m.usageLine("usage", s.CPUUsage, m.history.CPU(m.sparkWidth())), w),
	}
	for _, row := range coreRows(s.PerCoreUsage, w-4, m.thresholds) {
		lines = append(lines, SectionContentLine(row, w))
	}
	lines = append(lines, SectionFooter(w))
	return strings.Join(lines, "\n")
}

func (m Model) renderMemory(s *stats.Snapshot) string {
	w := m.boxWidth()
	value := fmt.Sprintf("%s / %s GB", proctable.FormatGB(s.MemUsed), proctable.FormatGB(s.MemTotal))

	return strings.Join([]string{
		SectionHeader("Memory", value, w),
		SectionContentLine(m.usageLine("used ", s.MemUsedPercent, m.history.Memory(m.sparkWidth())), w),
		SectionFooter(w),
	}, "\n")
}

func (m Model) renderFilesystems(s *stats.Snapshot) string {
	w := m.boxWidth()
	rows := proctable.RenderFilesystems(s.Filesystems)

	lines := []string{SectionHeader("File systems", "", w)}
	for _, r := range rows {
		if r.Empty {
			lines = append(lines, SectionContentLine(MutedStyle.Render(r.Mountpoint), w))
			continue
		}
		line := fmt.Sprintf("%-20s %9s / %-9s GB ", proctable.TruncateName(r.Mountpoint), r.Used, r.Total) +
			ui.RenderUsageBar(r.Percent, coreBarWidth, m.thresholds)
		lines = append(lines, SectionContentLine(line, w))
	}
	lines = append(lines, SectionFooter(w))
	return strings.Join(lines, "\n")
}

func (m Model) renderNetwork(s *stats.Snapshot) string {
	w := m.boxWidth()
	rows := proctable.RenderNetwork(s.Network)

	lines := []string{SectionHeader("Network", "", w)}
	for _, r := range rows {
		if r.Empty {
			lines = append(lines, SectionContentLine(MutedStyle.Render(r.Name), w))
			continue
		}
		line := fmt.Sprintf("%-23s rx %12s   tx %12s", r.Name, r.Rx, r.Tx)
		lines = append(lines, SectionContentLine(line, w))
	}
	lines = append(lines, SectionFooter(w))
	return strings.Join(lines, "\n")
}

func (m Model) usageLine(label string, percent float64, series []float64) string {
	bar := ui.RenderUsageBar(percent, m.barWidth(), m.thresholds)
	return LabelStyle.Render(label) + " " + bar + "  " + ui.RenderSparkline(series, m.sparkWidth(), m.thresholds)
}

// coreRows lays per-core bars out left to right, as many per line as fit.
func coreRows(cores []float64, width int, th proctable.Thresholds) []string {
	if len(cores) == 0 {
		return nil
	}
	perLine := width / coreCellWidth
	if perLine < 1 {
		perLine = 1
	}

	var rows []string
	for start := 0; start < len(cores); start += perLine {
		end := start + perLine
		if end > len(cores) {
			end = len(cores)
		}
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cell := fmt.Sprintf("%3d ", i) + ui.RenderUsageBar(cores[i], coreBarWidth, th)
			cells = append(cells, fit(cell, coreCellWidth, false))
		}
		rows = append(rows, strings.Join(cells, ""))
	}
	return rows
}

// renderProcesses draws the pinned and unpinned tables and returns the line
// index of the selected row, or -1 when nothing is selectable.
func (m Model) renderProcesses() (string, int) {
	widths := m.columnWidths()
	header := m.tableHeaderLine(widths)

	var lines []string
	selectedLine := -1
	index := 0

	writeRows := func(rows []proctable.Row) {
		for _, r := range rows {
			if index == m.selected {
				selectedLine = len(lines)
			}
			lines = append(lines, m.rowLine(r, widths, index == m.selected))
			index++
		}
	}

	if m.view.ShowPinned {
		lines = append(lines, PinnedMarkStyle.Render(fmt.Sprintf("%s Pinned (%d)", ui.SymbolPinned, len(m.view.Pinned))))
		lines = append(lines, header)
		writeRows(m.view.Pinned)
		lines = append(lines, "")
	}

	lines = append(lines, LabelStyle.Bold(true).Render(fmt.Sprintf("Processes (%d)", len(m.view.Unpinned))))
	lines = append(lines, header)
	writeRows(m.view.Unpinned)

	return strings.Join(lines, "\n"), selectedLine
}

func (m Model) tableHeaderLine(widths []int) string {
	focused := m.FocusedKey()
	parts := make([]string, len(m.view.Header))
	for i, h := range m.view.Header {
		title := h.Title
		if ind := h.Indicator(); ind != "" {
			title += " " + ind
		}

		style := ColumnHeaderStyle
		switch {
		case h.Active:
			style = ColumnActiveStyle
		case !h.Sortable:
			style = MutedStyle
		}
		if h.Key == focused {
			style = style.Underline(true)
		}
		parts[i] = style.Render(fit(title, widths[i], !h.Key.Textual()))
	}
	return strings.Repeat(" ", rowPrefix) + strings.Join(parts, " ")
}

func (m Model) rowLine(r proctable.Row, widths []int, selected bool) string {
	cursor, pin := " ", " "
	if selected {
		cursor = ui.SymbolCursor
	}
	if r.Pinned {
		pin = ui.SymbolPinned
	}

	cells := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		cells[i] = fit(c, widths[i], !proctable.Columns[i].Key.Textual())
	}

	if selected {
		return RowSelectedStyle.Render(cursor + pin + strings.Join(cells, " "))
	}

	cells[0] = MetricStyle(r.CPU, m.thresholds).Render(cells[0])
	if r.Pinned {
		pin = PinnedMarkStyle.Render(pin)
	}
	return cursor + pin + strings.Join(cells, " ")
}

// columnWidths gives NAME whatever the fixed columns leave over.
func (m Model) columnWidths() []int {
	widths := make([]int, len(proctable.Columns))
	used := rowPrefix
	nameIdx := -1
	for i, c := range proctable.Columns {
		if c.Width == 0 {
			nameIdx = i
			continue
		}
		widths[i] = c.Width
		used += c.Width + 1
	}
	if nameIdx >= 0 {
		rest := m.boxWidth() - used
		if rest < minNameWidth {
			rest = minNameWidth
		}
		widths[nameIdx] = rest
	}
	return widths
}

func (m Model) renderFooter() string {
	if m.notice != "" {
		style := NoticeStyle
		if !m.noticeOK {
			style = ErrorStyle
		}
		return FooterStyle.Render(style.Render(m.notice) + "  " + m.help.View(m.keys))
	}
	return FooterStyle.Render(m.help.View(m.keys))
}

func (m Model) boxWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

func (m Model) barWidth() int {
	w := (m.boxWidth() - 20) / 3
	if w < 10 {
		w = 10
	}
	return w
}

func (m Model) sparkWidth() int {
	w := m.boxWidth() - m.barWidth() - 24
	if w > DefaultHistorySize {
		w = DefaultHistorySize
	}
	if w < 0 {
		w = 0
	}
	return w
}

// fit pads or truncates s to exactly width cells.
func fit(s string, width int, right bool) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) > width {
		s = truncate(s, width)
	}
	pad := strings.Repeat(" ", width-lipgloss.Width(s))
	if right {
		return pad + s
	}
	return s + pad
}

func truncate(s string, width int) string {
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
