package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/shared"
)

const (
	defaultMaxTabs = 10
	maxTabTitle    = 20
)

// Tab is one open document. Documents are identified by source and id
// together, so project 7 and attachment 7 get separate tabs.
type Tab struct {
	Title string
	Kind  document.Kind
	ID    int64
}

// TabBar manages the open documents.
type TabBar struct {
	tabs      []Tab
	activeIdx int
	maxTabs   int
	width     int
}

func NewTabBar() TabBar {
	return TabBar{maxTabs: defaultMaxTabs, width: 80}
}

// Open focuses the tab for (kind, id), adding it when missing. It returns
// false when the tab limit is reached.
func (tb *TabBar) Open(title string, kind document.Kind, id int64) bool {
	for i, tab := range tb.tabs {
		if tab.Kind == kind && tab.ID == id {
			tb.activeIdx = i
			return true
		}
	}
	if len(tb.tabs) >= tb.maxTabs {
		return false
	}
	tb.tabs = append(tb.tabs, Tab{Title: title, Kind: kind, ID: id})
	tb.activeIdx = len(tb.tabs) - 1
	return true
}

// Close removes the active tab and reports whether any remain.
func (tb *TabBar) Close() bool {
	if len(tb.tabs) == 0 {
		return false
	}
	tb.tabs = append(tb.tabs[:tb.activeIdx], tb.tabs[tb.activeIdx+1:]...)
	if tb.activeIdx >= len(tb.tabs) {
		tb.activeIdx = len(tb.tabs) - 1
	}
	if tb.activeIdx < 0 {
		tb.activeIdx = 0
	}
	return len(tb.tabs) > 0
}

func (tb *TabBar) Next() {
	if len(tb.tabs) == 0 {
		return
	}
	tb.activeIdx = (tb.activeIdx + 1) % len(tb.tabs)
}

func (tb TabBar) Active() (Tab, bool) {
	if tb.activeIdx < 0 || tb.activeIdx >= len(tb.tabs) {
		return Tab{}, false
	}
	return tb.tabs[tb.activeIdx], true
}

// SetTitle updates the title of the tab for (kind, id) once it has loaded.
func (tb *TabBar) SetTitle(kind document.Kind, id int64, title string) {
	for i := range tb.tabs {
		if tb.tabs[i].Kind == kind && tb.tabs[i].ID == id {
			tb.tabs[i].Title = title
		}
	}
}

func (tb TabBar) HasTabs() bool {
	return len(tb.tabs) > 0
}

func (tb TabBar) Count() int {
	return len(tb.tabs)
}

func (tb *TabBar) SetWidth(w int) {
	tb.width = w
}

func (tb TabBar) Render() string {
	if len(tb.tabs) == 0 {
		return ""
	}

	var parts []string
	used := 0
	for i, tab := range tb.tabs {
		label := " " + shared.TruncateText(tab.Title, maxTabTitle) + " "
		style := inactiveTabStyle
		if i == tb.activeIdx {
			style = activeTabStyle
		}
		rendered := style.Render(label)

		used += lipgloss.Width(rendered)
		if used > tb.width-4 && i > 0 {
			parts = append(parts, dimStyle.Render(" …"))
			break
		}
		parts = append(parts, rendered)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
