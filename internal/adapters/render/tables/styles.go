package tables

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	empty   lipgloss.Style
	section lipgloss.Style
	summary lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("241")),
		cell:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		empty:   lipgloss.NewStyle().Faint(true),
		section: lipgloss.NewStyle().MarginTop(1),
		summary: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
