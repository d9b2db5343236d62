package tui

import "github.com/charmbracelet/bubbles/key"

type keyBindings struct {
	Search   key.Binding
	Navigate key.Binding
	Open     key.Binding
	Back     key.Binding
	Scroll   key.Binding
	NextTab  key.Binding
	CloseTab key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyBindings() keyBindings {
	return keyBindings{
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Navigate: key.NewBinding(
			key.WithKeys("j", "k", "up", "down"),
			key.WithHelp("j/k", "move"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Scroll: key.NewBinding(
			key.WithKeys("d", "u", "g", "G"),
			key.WithHelp("d/u", "scroll"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "close tab"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyBindings) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Open, k.Back, k.Help, k.Quit}
}

func (k keyBindings) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Navigate, k.Open, k.Back},
		{k.Scroll, k.NextTab, k.CloseTab},
		{k.Help, k.Quit},
	}
}
