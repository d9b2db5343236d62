package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/search"
)

// fakeBackend serves canned results: project 7 and attachment 7 share an id.
type fakeBackend struct {
	mu      sync.Mutex
	err     error
	queries []string
}

func (f *fakeBackend) Query(_ context.Context, q string) (search.Response, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.err != nil {
		return search.Response{}, f.err
	}
	return search.Response{
		Query: q,
		Phase: search.PhaseExact,
		Results: []search.Result{
			{ID: 7, Source: document.Project, Title: "minutes.pdf", ProjectName: "City Council", Excerpt: "the <b>budget</b> vote passed"},
			{ID: 7, Source: document.Attachment, Title: "response.pdf", Excerpt: "no <b>budget</b> records"},
		},
	}, nil
}

func (f *fakeBackend) Document(_ context.Context, kind document.Kind, id int64) (Document, error) {
	if id != 7 {
		return Document{}, fmt.Errorf("%s:%d: %w", kind, id, db.ErrNotFound)
	}
	ref := document.Ref{Kind: kind, ID: id, Filename: "minutes.pdf"}
	body := "Councillor Lopez dissented on the budget."
	if kind == document.Attachment {
		ref.Filename = "response.pdf"
		body = "The agency found no responsive records."
	}
	return Document{Ref: ref, Body: body, Indexed: true}, nil
}

var escKey = tea.KeyMsg{Type: tea.KeyEsc}
