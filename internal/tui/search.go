package tui

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NewsNowIndy/Dashboard/internal/search"
)

// searchTickMsg is sent when the debounce timer expires.
type searchTickMsg struct{ query string }

type searchResultsMsg struct {
	response search.Response
}

type searchErrMsg struct{ err error }

// SearchModel is the query input.
type SearchModel struct {
	input       textinput.Model
	backend     Backend
	debounce    time.Duration
	lastQuery   string
	searched    string
	resultCount int
	phase       search.Phase
	searching   bool
	err         error
}

func NewSearchModel(backend Backend) SearchModel {
	input := textinput.New()
	input.Placeholder = "Search records..."
	input.Focus()
	return SearchModel{input: input, backend: backend, debounce: 200 * time.Millisecond}
}

func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if m.input.Value() != "" {
				m.searching = true
				m.searched = m.input.Value()
				return m, m.performSearch(m.searched)
			}
		case "esc":
			m.input.Reset()
			m.lastQuery = ""
			m.searched = ""
			m.resultCount = 0
			m.err = nil
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		query := m.input.Value()
		if query != m.lastQuery && len(query) >= 2 {
			m.lastQuery = query
			return m, tea.Sequence(cmd, m.startDebounce(query))
		}
		return m, cmd

	case searchTickMsg:
		// Only the latest keystroke's timer fires a query, and not one
		// enter already ran.
		if msg.query == m.input.Value() && msg.query != m.searched {
			m.searching = true
			m.searched = msg.query
			return m, m.performSearch(msg.query)
		}
		return m, nil
	}

	return m, nil
}

func (m SearchModel) View() string {
	var status string
	switch {
	case m.err != nil:
		status = errorStyle.Render(" Search failed: " + m.err.Error())
	case m.searching:
		status = dimStyle.Render(" Searching...")
	case m.resultCount > 0:
		label := " " + strconv.Itoa(m.resultCount) + " results"
		if m.phase == search.PhasePrefix {
			label += " (prefix)"
		}
		status = accentStyle.Render(label)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, searchInputStyle.Render(m.input.View()), status)
}

func (m SearchModel) Value() string {
	return m.input.Value()
}

func (m SearchModel) Focused() bool {
	return m.input.Focused()
}

func (m SearchModel) Focus() SearchModel {
	m.input.Focus()
	return m
}

func (m SearchModel) Blur() SearchModel {
	m.input.Blur()
	return m
}

func (m SearchModel) startDebounce(query string) tea.Cmd {
	return tea.Tick(m.debounce, func(_ time.Time) tea.Msg {
		return searchTickMsg{query: query}
	})
}

func (m SearchModel) performSearch(query string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		resp, err := backend.Query(context.Background(), query)
		if err != nil {
			return searchErrMsg{err: err}
		}
		return searchResultsMsg{response: resp}
	}
}

// SetResults records the outcome of the last query.
func (m *SearchModel) SetResults(count int, phase search.Phase, err error) {
	m.searching = false
	m.resultCount = count
	m.phase = phase
	m.err = err
}
