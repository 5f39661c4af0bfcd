package tables

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/seungjunone/peloton-data-explorer/internal/domain"
)

type RenderOptions struct {
	// MaxRows caps the rows printed per extract; 0 means no cap.
	MaxRows int
}

// Render lays out the four overview extracts as aligned text tables.
func Render(extracts domain.Extracts, opts RenderOptions) string {
	s := newStyles()

	sections := []struct {
		title string
		table domain.Table
	}{
		{"Personal Records", extracts.PersonalRecords},
		{"Streaks", extracts.Streaks},
		{"Achievements", extracts.Achievements},
		{"Workout Counts", extracts.WorkoutCounts},
	}

	lines := make([]string, 0, len(sections))
	for i, section := range sections {
		rendered := renderTable(section.title, section.table, opts, s)
		if i > 0 {
			rendered = s.section.Render(rendered)
		}
		lines = append(lines, rendered)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderTable(title string, table domain.Table, opts RenderOptions, s styles) string {
	parts := []string{s.title.Render(title)}

	if table.Empty() {
		parts = append(parts, s.empty.Render("no rows"))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	widths := columnWidths(table)
	parts = append(parts, s.header.Render(renderRowCells(table.Columns, widths)))

	rows := table.Rows
	truncated := 0
	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		truncated = len(rows) - opts.MaxRows
		rows = rows[:opts.MaxRows]
	}

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = domain.FormatCell(cell)
		}
		parts = append(parts, s.cell.Render(renderRowCells(cells, widths)))
	}

	if truncated > 0 {
		parts = append(parts, s.summary.Render(fmt.Sprintf("... and %d more rows", truncated)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// columnWidths measures display width, not bytes, so non-ASCII workout and
// achievement names keep the columns aligned.
func columnWidths(table domain.Table) []int {
	widths := make([]int, len(table.Columns))
	for i, col := range table.Columns {
		widths[i] = lipgloss.Width(col)
	}
	for _, row := range table.Rows {
		for i, cell := range row {
			if width := lipgloss.Width(domain.FormatCell(cell)); width > widths[i] {
				widths[i] = width
			}
		}
	}
	return widths
}

func renderRowCells(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		if pad := widths[i] - lipgloss.Width(cell); pad > 0 {
			cell += strings.Repeat(" ", pad)
		}
		padded[i] = cell
	}
	return strings.TrimRight(strings.Join(padded, "  "), " ")
}
