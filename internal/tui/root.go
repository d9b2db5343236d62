package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type appMode int

const (
	modeSearch appMode = iota
	modeList
	modeDoc
)

// RootModel routes messages between the search box, the result list and the
// document viewer.
type RootModel struct {
	backend  Backend
	mode     appMode
	quitting bool
	showHelp bool
	search   SearchModel
	list     ListModel
	doc      DocModel
	tabs     TabBar
	help     help.Model
	keys     keyBindings
}

func NewRootModel(backend Backend) RootModel {
	h := help.New()
	return RootModel{
		backend: backend,
		mode:    modeSearch,
		search:  NewSearchModel(backend),
		list:    NewListModel(),
		doc:     NewDocModel(backend),
		tabs:    NewTabBar(),
		help:    h,
		keys:    newKeyBindings(),
	}
}

func (m RootModel) Init() tea.Cmd {
	return m.search.Init()
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "q":
			if m.mode != modeSearch || !m.search.Focused() {
				m.quitting = true
				return m, tea.Quit
			}
		case "?":
			if m.mode != modeSearch || !m.search.Focused() {
				m.showHelp = !m.showHelp
				return m, nil
			}
		case "tab":
			if m.mode == modeDoc && m.tabs.Count() > 1 {
				m.tabs.Next()
				return m, m.openActiveTab()
			}
			return m, nil
		case "ctrl+w":
			if m.mode == modeDoc && m.tabs.HasTabs() {
				if m.tabs.Close() {
					return m, m.openActiveTab()
				}
				m.mode = modeList
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-6)
		m.doc, _ = m.doc.Update(msg)
		m.tabs.SetWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case searchTickMsg:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd

	case searchResultsMsg:
		m.search.SetResults(len(msg.response.Results), msg.response.Phase, nil)
		m.list.SetResults(msg.response.Results)
		if len(msg.response.Results) > 0 && m.mode == modeSearch {
			m.mode = modeList
			m.search = m.search.Blur()
		}
		return m, nil

	case searchErrMsg:
		m.search.SetResults(0, "", msg.err)
		return m, nil

	case listSelectMsg:
		if !m.tabs.Open(msg.result.Title, msg.result.Source, msg.result.ID) {
			return m, nil
		}
		m.mode = modeDoc
		return m, m.openActiveTab()

	case loadDocMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.doc, cmd = m.doc.Update(msg)
		return m, cmd

	case docLoadedMsg:
		if msg.err == nil {
			m.tabs.SetTitle(msg.kind, msg.id, msg.title)
		}
		var cmd tea.Cmd
		m.doc, cmd = m.doc.Update(msg)
		return m, cmd

	case backToListMsg:
		m.mode = modeList
		return m, nil

	case focusSearchMsg:
		m.mode = modeSearch
		m.search = m.search.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		m.search, cmd = m.search.Update(msg)
	case modeList:
		m.list, cmd = m.list.Update(msg)
	case modeDoc:
		m.doc, cmd = m.doc.Update(msg)
	}
	return m, cmd
}

// openActiveTab points the viewer at the active tab.
func (m *RootModel) openActiveTab() tea.Cmd {
	tab, ok := m.tabs.Active()
	if !ok {
		return nil
	}
	m.doc = NewDocModel(m.backend)
	return m.doc.LoadDocument(tab.Kind, tab.ID)
}

func (m RootModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.showHelp {
		return m.renderHelpView()
	}

	helpText := m.help.View(m.keys)
	switch m.mode {
	case modeSearch:
		return lipgloss.JoinVertical(lipgloss.Left, m.search.View(), "", helpText)
	case modeList:
		return lipgloss.JoinVertical(lipgloss.Left, m.search.View(), "", m.list.View(), "", helpText)
	case modeDoc:
		var parts []string
		if m.tabs.HasTabs() {
			parts = append(parts, m.tabs.Render())
		}
		parts = append(parts, m.doc.View(), "", helpText)
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	default:
		return ""
	}
}

func (m RootModel) renderHelpView() string {
	full := m.help
	full.ShowAll = true
	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Keyboard Shortcuts"),
		full.View(m.keys),
		"",
		dimStyle.Render("Press ? to close help"),
	)
}
