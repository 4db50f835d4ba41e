package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/statdash/internal/proctable"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	s.Selected = s.Selected.
		Foreground(ColorPrimary).
		Bold(false)

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string for CLI output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// HeaderColumns turns a process table header into table columns, with the
// sort arrow appended to the active title.
func HeaderColumns(header []proctable.HeaderCell) []TableColumn {
	cols := make([]TableColumn, len(header))
	for i, h := range header {
		title := h.Title
		if ind := h.Indicator(); ind != "" {
			title += " " + ind
		}
		width := h.Width
		if w := lipgloss.Width(title); w > width {
			width = w
		}
		cols[i] = TableColumn{Title: title, Width: width}
	}
	return cols
}

// RenderProcessTable renders a process view as plain text: the pinned table
// first (only when pins exist), then the remaining processes.
func RenderProcessTable(view proctable.TableView) string {
	cols := fitColumns(HeaderColumns(view.Header), cells(view.Rows()))
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPinned)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	var sb strings.Builder
	if view.ShowPinned {
		sb.WriteString(sectionStyle.Render(SymbolPinned+" Pinned") + "\n")
		if len(view.Pinned) == 0 {
			sb.WriteString(mutedStyle.Render("  pinned processes are not running") + "\n")
		} else {
			sb.WriteString(RenderSimpleTable(cols, cells(view.Pinned)) + "\n")
		}
		sb.WriteString("\n")
	}

	if len(view.Unpinned) == 0 {
		sb.WriteString(RenderHeaderLine(cols) + "\n")
		return sb.String()
	}
	sb.WriteString(RenderSimpleTable(cols, cells(view.Unpinned)) + "\n")
	return sb.String()
}

// RenderHeaderLine draws just the header row, used when a table has no rows.
func RenderHeaderLine(cols []TableColumn) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)

	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = padRight(c.Title, c.Width)
	}
	return headerStyle.Render(strings.Join(parts, " "))
}

// fitColumns widens each column to its widest cell so nothing is truncated.
func fitColumns(cols []TableColumn, rows [][]string) []TableColumn {
	for _, row := range rows {
		for i, c := range row {
			if i < len(cols) {
				if w := lipgloss.Width(c); w > cols[i].Width {
					cols[i].Width = w
				}
			}
		}
	}
	return cols
}

func cells(rows []proctable.Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Cells
	}
	return out
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
