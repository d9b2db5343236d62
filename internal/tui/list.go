package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/NewsNowIndy/Dashboard/internal/search"
	"github.com/NewsNowIndy/Dashboard/internal/shared"
)

// listSelectMsg is sent when the user presses Enter on a result.
type listSelectMsg struct {
	result search.Result
}

// focusSearchMsg is sent when user presses "/" to return to search.
type focusSearchMsg struct{}

// ResultItem wraps search.Result for display in the list.
type ResultItem struct {
	result search.Result
}

func NewResultItem(r search.Result) ResultItem {
	return ResultItem{result: r}
}

func (i ResultItem) Result() search.Result {
	return i.result
}

// FilterValue implements list.Item.
func (i ResultItem) FilterValue() string {
	return i.result.Title
}

// meta is the second line of a result: source, project and excerpt.
func (i ResultItem) meta() string {
	parts := []string{string(i.result.Source)}
	if i.result.ProjectName != "" {
		parts = append(parts, i.result.ProjectName)
	}
	return strings.Join(parts, " · ")
}

func (i ResultItem) excerpt() string {
	return shared.TruncateText(strings.Join(strings.Fields(shared.StripHighlight(i.result.Excerpt)), " "), 100)
}

// ResultDelegate renders a result as title, meta line and excerpt.
type ResultDelegate struct{}

func NewResultDelegate() ResultDelegate {
	return ResultDelegate{}
}

func (d ResultDelegate) Height() int {
	return 3
}

func (d ResultDelegate) Spacing() int {
	return 1
}

func (d ResultDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d ResultDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(ResultItem)
	if !ok {
		return
	}

	title, meta := nameStyle.Render(i.result.Title), metaStyle.Render(i.meta())
	if index == m.Index() {
		title, meta = selectedNameStyle.Render(i.result.Title), selectedMetaStyle.Render(i.meta())
	}
	fmt.Fprintf(w, "%s\n%s\n%s", title, meta, excerptStyle.Render(i.excerpt()))
}

// ListModel wraps bubbles/list for result navigation.
type ListModel struct {
	list list.Model
}

func NewListModel() ListModel {
	l := list.New(nil, NewResultDelegate(), 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(true)
	l.SetShowFilter(false)
	l.DisableQuitKeybindings()

	l.KeyMap.NextPage.SetKeys("ctrl+d", "pgdown")
	l.KeyMap.PrevPage.SetKeys("ctrl+u", "pgup")

	return ListModel{list: l}
}

func (m ListModel) Init() tea.Cmd {
	return nil
}

func (m ListModel) Update(msg tea.Msg) (ListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(ResultItem); ok {
				return m, func() tea.Msg {
					return listSelectMsg{result: item.result}
				}
			}
			return m, nil
		case "/":
			return m, func() tea.Msg {
				return focusSearchMsg{}
			}
		case "j", "down":
			m.list.CursorDown()
			return m, nil
		case "k", "up":
			m.list.CursorUp()
			return m, nil
		case "G":
			if n := len(m.list.Items()); n > 0 {
				m.list.Select(n - 1)
			}
			return m, nil
		case "g":
			if len(m.list.Items()) > 0 {
				m.list.Select(0)
			}
			return m, nil
		}

	case searchResultsMsg:
		m.SetResults(msg.response.Results)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m ListModel) View() string {
	if len(m.list.Items()) == 0 {
		return emptyStateStyle.Render("No documents match. Try fewer or shorter words.")
	}
	return m.list.View()
}

// SetResults replaces the list contents and selects the first result.
func (m *ListModel) SetResults(results []search.Result) {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = NewResultItem(r)
	}
	m.list.SetItems(items)
	if len(items) > 0 {
		m.list.Select(0)
	}
}

// Selected returns the highlighted result.
func (m ListModel) Selected() (search.Result, bool) {
	item, ok := m.list.SelectedItem().(ResultItem)
	return item.result, ok
}

func (m *ListModel) SetSize(w, h int) {
	m.list.SetWidth(w)
	m.list.SetHeight(h)
}
