package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/lipgloss"

	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/shared"
)

// loadDocMsg is sent to trigger loading a document.
type loadDocMsg struct {
	kind document.Kind
	id   int64
}

// docLoadedMsg carries a fetched and rendered document.
type docLoadedMsg struct {
	kind    document.Kind
	id      int64
	title   string
	content string
	err     error
}

// backToListMsg is sent when user presses Esc to return to the list.
type backToListMsg struct{}

// DocModel is the document viewer.
type DocModel struct {
	backend  Backend
	viewport viewport.Model
	spinner  spinner.Model
	kind     document.Kind
	id       int64
	title    string
	content  string
	loading  bool
	err      error
}

func NewDocModel(backend Backend) DocModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa"))
	return DocModel{backend: backend, viewport: viewport.New(0, 0), spinner: sp}
}

func (m DocModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// LoadDocument returns a command to load one document.
func (m DocModel) LoadDocument(kind document.Kind, id int64) tea.Cmd {
	return func() tea.Msg {
		return loadDocMsg{kind: kind, id: id}
	}
}

func (m DocModel) loadDocument(kind document.Kind, id int64) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		doc, err := backend.Document(context.Background(), kind, id)
		if err != nil {
			return docLoadedMsg{kind: kind, id: id, err: err}
		}
		content, err := renderMarkdown(doc.Markdown())
		if err != nil {
			return docLoadedMsg{kind: kind, id: id, err: err}
		}
		return docLoadedMsg{kind: kind, id: id, title: doc.Ref.DisplayTitle(), content: content}
	}
}

var theme = ansi.StyleConfig{
	Document: ansi.StyleBlock{
		StylePrimitive: ansi.StylePrimitive{Color: shared.StringPtr("#e5e7eb")},
	},
	H1: ansi.StyleBlock{
		StylePrimitive: ansi.StylePrimitive{
			Color:       shared.StringPtr("#60a5fa"),
			Bold:        shared.BoolPtr(true),
			BlockSuffix: "\n",
		},
	},
	H2: ansi.StyleBlock{
		StylePrimitive: ansi.StylePrimitive{
			Color:       shared.StringPtr("#60a5fa"),
			Bold:        shared.BoolPtr(true),
			BlockPrefix: "\n",
			BlockSuffix: "\n",
		},
	},
	Text:     ansi.StylePrimitive{Color: shared.StringPtr("#e5e7eb")},
	Strong:   ansi.StylePrimitive{Bold: shared.BoolPtr(true)},
	Emph:     ansi.StylePrimitive{Italic: shared.BoolPtr(true)},
	List:     ansi.StyleList{LevelIndent: 2},
	Item:     ansi.StylePrimitive{BlockPrefix: "• "},
	Link:     ansi.StylePrimitive{Color: shared.StringPtr("#60a5fa"), Underline: shared.BoolPtr(true)},
	LinkText: ansi.StylePrimitive{Color: shared.StringPtr("#60a5fa"), Bold: shared.BoolPtr(true)},
	BlockQuote: ansi.StyleBlock{
		StylePrimitive: ansi.StylePrimitive{
			Color:       shared.StringPtr("#9ca3af"),
			Italic:      shared.BoolPtr(true),
			BlockPrefix: "> ",
		},
	},
	CodeBlock: ansi.StyleCodeBlock{
		StyleBlock: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color:           shared.StringPtr("#e5e7eb"),
				BackgroundColor: shared.StringPtr("#1f2937"),
			},
		},
	},
	Paragraph: ansi.StyleBlock{
		StylePrimitive: ansi.StylePrimitive{BlockPrefix: "\n", BlockSuffix: "\n"},
	},
}

func renderMarkdown(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithStyles(theme), glamour.WithWordWrap(80))
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

func (m DocModel) Update(msg tea.Msg) (DocModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDocMsg:
		m.kind, m.id = msg.kind, msg.id
		m.loading = true
		m.err = nil
		return m, tea.Batch(m.loadDocument(msg.kind, msg.id), m.spinner.Tick)

	case docLoadedMsg:
		// A slower load for a tab the user already left is dropped.
		if msg.kind != m.kind || msg.id != m.id {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.title = msg.title
		m.content = msg.content
		m.viewport.SetContent(m.content)
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			m.viewport.ScrollDown(1)
			return m, nil
		case "k", "up":
			m.viewport.ScrollUp(1)
			return m, nil
		case "d":
			m.viewport.HalfPageDown()
			return m, nil
		case "u":
			m.viewport.HalfPageUp()
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		case "esc":
			return m, func() tea.Msg { return backToListMsg{} }
		case "/":
			return m, func() tea.Msg { return focusSearchMsg{} }
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m DocModel) View() string {
	if m.err != nil {
		return errorStyle.Render("Error loading document: " + m.err.Error())
	}
	if m.loading {
		return lipgloss.JoinHorizontal(lipgloss.Left, m.spinner.View(), dimStyle.Render(" Loading document..."))
	}
	if m.content == "" {
		return emptyStateStyle.Render("No document loaded.")
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		docTitleStyle.Render(m.title),
		docBackStyle.Render("  "+string(m.kind)+"  esc: back"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())
}

// Title returns the loaded document's title.
func (m DocModel) Title() string {
	return m.title
}
