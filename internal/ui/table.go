package ui

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// renderTable draws a bordered table. highlight, when set, marks cells that
// should stand out (the diagonal of a confusion matrix).
func renderTable(headers []string, rows [][]string, highlight func(row, col int) bool) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return s.Foreground(ColorSecondary).Bold(true)
			case highlight != nil && highlight(row, col):
				return s.Foreground(ColorSuccess).Bold(true)
			case col == 0:
				return s.Foreground(ColorTextDim)
			}
			return s
		})
	return t.Render()
}
