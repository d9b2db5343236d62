package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/NewsNowIndy/Dashboard/internal/search"
)

func TestSearchModelStaleTickIgnored(t *testing.T) {
	backend := &fakeBackend{}
	m := NewSearchModel(backend)
	m.input.SetValue("budget")

	if _, cmd := m.Update(searchTickMsg{query: "bud"}); cmd != nil {
		t.Error("stale tick started a search")
	}

	m, cmd := m.Update(searchTickMsg{query: "budget"})
	if cmd == nil {
		t.Fatal("current tick did not search")
	}
	if !m.searching {
		t.Error("searching = false after tick")
	}
	if _, ok := cmd().(searchResultsMsg); !ok {
		t.Error("search command did not return results")
	}
}

func TestSearchModelView(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		phase    search.Phase
		err      error
		expected string
	}{
		{"exact", 2, search.PhaseExact, nil, "2 results"},
		{"prefix", 3, search.PhasePrefix, nil, "(prefix)"},
		{"error", 0, "", errors.New("boom"), "Search failed: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSearchModel(&fakeBackend{})
			m.SetResults(tt.count, tt.phase, tt.err)
			if view := m.View(); !strings.Contains(view, tt.expected) {
				t.Errorf("View() = %q, want %q", view, tt.expected)
			}
		})
	}
}

func TestSearchModelEscResets(t *testing.T) {
	m := NewSearchModel(&fakeBackend{})
	m.input.SetValue("budget")
	m.SetResults(2, search.PhaseExact, nil)

	m, _ = m.Update(escKey)
	if m.Value() != "" || m.resultCount != 0 {
		t.Errorf("after esc value=%q count=%d", m.Value(), m.resultCount)
	}
}
