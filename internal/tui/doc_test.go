package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/NewsNowIndy/Dashboard/internal/document"
)

func TestDocumentMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		doc      Document
		contains []string
	}{
		{
			name: "indexed with notes",
			doc: Document{
				Ref:         document.Ref{Kind: document.Project, ID: 1, Title: "Autopsy"},
				ProjectName: "Jail Deaths",
				Notes:       "call the coroner",
				Body:        "cause of death pending",
				Indexed:     true,
			},
			contains: []string{"# Autopsy", "**Project:** Jail Deaths", "## Notes", "call the coroner", "cause of death pending"},
		},
		{
			name:     "not indexed",
			doc:      Document{Ref: document.Ref{Kind: document.Attachment, ID: 2, Encrypted: true}},
			contains: []string{"# Attachment 2", "encrypted", "_Not indexed._"},
		},
		{
			name:     "empty body",
			doc:      Document{Ref: document.Ref{Kind: document.Media, ID: 3}, Indexed: true},
			contains: []string{"no extractable text"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := tt.doc.Markdown()
			for _, want := range tt.contains {
				if !strings.Contains(md, want) {
					t.Errorf("Markdown() = %q, missing %q", md, want)
				}
			}
		})
	}
}

func TestDocModelDropsStaleLoads(t *testing.T) {
	m := NewDocModel(&fakeBackend{})
	m, _ = m.Update(loadDocMsg{kind: document.Attachment, id: 7})

	m, _ = m.Update(docLoadedMsg{kind: document.Project, id: 7, title: "wrong", content: "wrong"})
	if m.content != "" || !m.loading {
		t.Errorf("stale load applied: content=%q loading=%v", m.content, m.loading)
	}

	m, _ = m.Update(docLoadedMsg{kind: document.Attachment, id: 7, title: "response.pdf", content: "rendered"})
	if m.Title() != "response.pdf" || m.loading {
		t.Errorf("Title() = %q loading=%v", m.Title(), m.loading)
	}
}

func TestDocModelError(t *testing.T) {
	m := NewDocModel(&fakeBackend{})
	m, _ = m.Update(loadDocMsg{kind: document.Project, id: 1})
	m, _ = m.Update(docLoadedMsg{kind: document.Project, id: 1, err: errors.New("not found")})
	if !strings.Contains(m.View(), "Error loading document") {
		t.Errorf("View() = %q, want error", m.View())
	}
}

func TestDocModelLoadCommand(t *testing.T) {
	m := NewDocModel(&fakeBackend{})
	msg, ok := m.loadDocument(document.Project, 7)().(docLoadedMsg)
	if !ok {
		t.Fatal("loadDocument did not produce docLoadedMsg")
	}
	if msg.err != nil {
		t.Fatal(msg.err)
	}
	if msg.title != "minutes.pdf" || !strings.Contains(msg.content, "dissented") {
		t.Errorf("loaded title=%q content=%q", msg.title, msg.content)
	}
}
