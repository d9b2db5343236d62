package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle        = newWithColor("#2563eb").Bold(true).MarginBottom(1)
	searchInputStyle  = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6b7280"))
	errorStyle        = newWithColor("#ef4444")
	dimStyle          = newWithColor("#6b7280").Italic(true)
	accentStyle       = newWithColor("#2563eb")
	nameStyle         = newWithColor("#f9fafb")
	selectedNameStyle = newWithColor("#60a5fa").Bold(true)
	metaStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")).Faint(true)
	selectedMetaStyle = newWithColor("#60a5fa")
	excerptStyle      = newWithColor("#d1d5db")
	emptyStateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")).Italic(true).Padding(1, 2)
	docTitleStyle     = newWithColor("#60a5fa").Bold(true)
	docBackStyle      = newWithColor("#9ca3af")
	activeTabStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9fafb")).Background(lipgloss.Color("#1d4ed8")).Bold(true)
	inactiveTabStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")).Background(lipgloss.Color("#1f2937"))
)

func newWithColor(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}
