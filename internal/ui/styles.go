package ui

import (
	"bilancio/internal/core"

	"github.com/charmbracelet/lipgloss"
)

// Styles groups the lipgloss styles for one theme.
type Styles struct {
	Title   lipgloss.Style
	Income  lipgloss.Style
	Expense lipgloss.Style
	Balance lipgloss.Style
	Muted   lipgloss.Style
	Card    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}

// StylesFor returns the palette for the applied theme. Which palette is
// active always follows the theme controller, never an ambient global.
func StylesFor(theme core.Theme) Styles {
	if theme == core.ThemeDark {
		return Styles{
			Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e5e7eb")),
			Income:  lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
			Expense: lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
			Balance: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6")),
			Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")),
			Card:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2).BorderForeground(lipgloss.Color("#374151")),
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
			Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6")),
		}
	}
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#374151")),
		Income:  lipgloss.NewStyle().Foreground(lipgloss.Color("#059669")),
		Expense: lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")),
		Balance: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563eb")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")),
		Card:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2).BorderForeground(lipgloss.Color("#d1d5db")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#059669")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#2563eb")),
	}
}
