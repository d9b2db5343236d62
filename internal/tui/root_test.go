package tui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/search"
)

func TestRootModel_SearchResultsSwitchToList(t *testing.T) {
	model := NewRootModel(&fakeBackend{})
	resp, _ := (&fakeBackend{}).Query(context.Background(), "budget")

	next, _ := model.Update(searchResultsMsg{response: resp})
	m := next.(RootModel)
	if m.mode != modeList {
		t.Errorf("mode = %v, want list", m.mode)
	}
	if m.search.Focused() {
		t.Error("search input still focused")
	}
}

func TestRootModel_EmptyResultsStayInSearch(t *testing.T) {
	model := NewRootModel(&fakeBackend{})
	next, _ := model.Update(searchResultsMsg{response: search.Response{Results: []search.Result{}}})
	if next.(RootModel).mode != modeSearch {
		t.Error("empty results left search mode")
	}
}

func TestRootModel_SearchError(t *testing.T) {
	model := NewRootModel(&fakeBackend{})
	next, _ := model.Update(searchErrMsg{err: errors.New("database is locked")})
	if view := next.(RootModel).View(); !strings.Contains(view, "database is locked") {
		t.Errorf("View() = %q, want error", view)
	}
}

func TestRootModel_SelectOpensTab(t *testing.T) {
	model := NewRootModel(&fakeBackend{})
	next, cmd := model.Update(listSelectMsg{result: search.Result{ID: 7, Source: document.Attachment, Title: "response.pdf"}})
	m := next.(RootModel)

	if m.mode != modeDoc {
		t.Errorf("mode = %v, want doc", m.mode)
	}
	if cmd == nil {
		t.Fatal("expected load command")
	}
	if msg, ok := cmd().(loadDocMsg); !ok || msg.kind != document.Attachment || msg.id != 7 {
		t.Errorf("cmd() = %#v, want loadDocMsg for attachment:7", cmd())
	}
	if tab, _ := m.tabs.Active(); tab.Kind != document.Attachment {
		t.Errorf("active tab = %+v", tab)
	}
}

func TestRootModel_CloseLastTabReturnsToList(t *testing.T) {
	model := NewRootModel(&fakeBackend{})
	next, _ := model.Update(listSelectMsg{result: search.Result{ID: 7, Source: document.Project, Title: "minutes.pdf"}})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyCtrlW})
	m := next.(RootModel)
	if m.mode != modeList || m.tabs.HasTabs() {
		t.Errorf("mode = %v, tabs = %d; want list with no tabs", m.mode, m.tabs.Count())
	}
}

func TestRootModel_Quit(t *testing.T) {
	model := NewRootModel(&fakeBackend{})
	next, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !next.(RootModel).quitting || cmd == nil {
		t.Error("ctrl+c did not quit")
	}
	if next.View() != "Goodbye!\n" {
		t.Errorf("View() = %q", next.View())
	}
}

func TestRootModel_QTypesIntoSearch(t *testing.T) {
	model := NewRootModel(&fakeBackend{})
	next, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m := next.(RootModel)
	if m.quitting {
		t.Error("q quit while typing a query")
	}
	if m.search.Value() != "q" {
		t.Errorf("search value = %q, want q", m.search.Value())
	}
}

func TestRootModel_HelpView(t *testing.T) {
	model := NewRootModel(&fakeBackend{})
	model.mode = modeList
	model.search = model.search.Blur()

	next, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if view := next.View(); !strings.Contains(view, "Keyboard Shortcuts") {
		t.Errorf("View() = %q, want help overlay", view)
	}
}

// TestRootModel_Integration_BrowseFlow types a query, opens the second
// result and checks the attachment (not the project document with the same
// id) is shown.
func TestRootModel_Integration_BrowseFlow(t *testing.T) {
	backend := &fakeBackend{}
	tm := teatest.NewTestModel(t, NewRootModel(backend), teatest.WithInitialTermSize(100, 40))

	tm.Type("budget")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("response.pdf"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("responsive"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	final := tm.FinalModel(t).(RootModel)
	if tab, ok := final.tabs.Active(); !ok || tab.Kind != document.Attachment {
		t.Errorf("active tab = %+v, want attachment", tab)
	}
	if len(backend.queries) == 0 || backend.queries[0] != "budget" {
		t.Errorf("queries = %v, want budget first", backend.queries)
	}
}

func TestRootModel_Integration_QuitFlow(t *testing.T) {
	tm := teatest.NewTestModel(t, NewRootModel(&fakeBackend{}), teatest.WithInitialTermSize(80, 40))
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, tm.FinalOutput(t)); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Goodbye")) {
		t.Error("expected output to contain 'Goodbye'")
	}
}
