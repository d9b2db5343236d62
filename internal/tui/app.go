// Package tui is a terminal browser for the records index: type a query,
// pick a result, read the document in a tab.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the Bubble Tea program over backend.
func Run(backend Backend) error {
	p := tea.NewProgram(NewRootModel(backend), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
