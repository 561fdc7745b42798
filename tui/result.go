package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DachengChen/sqlchat/db"
)

// maxCellWidth caps a result column; longer cells end in "…".
const maxCellWidth = 40

// formatResultTable renders r as an aligned text table followed by its
// status line.
func formatResultTable(r *db.QueryResult) []string {
	if r == nil {
		return nil
	}
	if len(r.Columns) == 0 {
		return []string{StyleDimmed.Render(r.Status)}
	}

	widths := make([]int, len(r.Columns))
	for i, col := range r.Columns {
		widths[i] = lipgloss.Width(col)
	}
	for _, row := range r.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxCellWidth)
	}

	var header, rule []string
	for i, col := range r.Columns {
		header = append(header, pad(col, widths[i]))
		rule = append(rule, strings.Repeat("─", widths[i]+2))
	}

	lines := []string{
		StyleSuccess.Render(" " + strings.Join(header, " │ ")),
		StyleDimmed.Render(strings.Join(rule, "┼")),
	}
	for _, row := range r.Rows {
		cells := make([]string, len(widths))
		for i := range widths {
			if i < len(row) {
				cells[i] = pad(clip(row[i], widths[i]), widths[i])
			} else {
				cells[i] = pad("", widths[i])
			}
		}
		lines = append(lines, " "+strings.Join(cells, " │ "))
	}
	lines = append(lines, StyleDimmed.Render(r.Status))
	return lines
}

func clip(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
