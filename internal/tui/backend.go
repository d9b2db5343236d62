package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/search"
)

// Backend is what the browser reads from.
type Backend interface {
	Query(ctx context.Context, q string) (search.Response, error)
	Document(ctx context.Context, kind document.Kind, id int64) (Document, error)
}

// Document is a record prepared for the viewer.
type Document struct {
	Ref         document.Ref
	ProjectName string
	Notes       string
	Body        string
	Indexed     bool
}

// Markdown lays the document out for glamour.
func (d Document) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Ref.DisplayTitle())
	fmt.Fprintf(&b, "- **Source:** %s\n", d.Ref.Kind)
	if d.ProjectName != "" {
		fmt.Fprintf(&b, "- **Project:** %s\n", d.ProjectName)
	}
	if d.Ref.Filename != "" {
		fmt.Fprintf(&b, "- **File:** %s\n", d.Ref.Filename)
	}
	if d.Ref.Encrypted {
		b.WriteString("- **Storage:** encrypted\n")
	}

	if strings.TrimSpace(d.Notes) != "" {
		fmt.Fprintf(&b, "\n## Notes\n\n%s\n", d.Notes)
	}

	b.WriteString("\n## Indexed text\n\n")
	switch {
	case !d.Indexed:
		b.WriteString("_Not indexed._\n")
	case strings.TrimSpace(d.Body) == "":
		b.WriteString("_Indexed with no extractable text._\n")
	default:
		b.WriteString(d.Body)
		b.WriteString("\n")
	}
	return b.String()
}

// StoreBackend reads from the database.
type StoreBackend struct {
	store  *db.Store
	engine *search.Engine
}

func NewStoreBackend(store *db.Store, engine *search.Engine) *StoreBackend {
	return &StoreBackend{store: store, engine: engine}
}

func (b *StoreBackend) Query(ctx context.Context, q string) (search.Response, error) {
	return b.engine.Query(ctx, q)
}

func (b *StoreBackend) Document(ctx context.Context, kind document.Kind, id int64) (Document, error) {
	ref, err := b.store.GetRef(ctx, kind, id)
	if err != nil {
		return Document{}, err
	}

	doc := Document{Ref: ref}
	if ref.ProjectSlug != "" {
		doc.ProjectName = b.store.ProjectName(ctx, ref.ProjectSlug)
	}
	if kind == document.Project {
		if doc.Notes, err = b.store.ProjectDocumentNotes(ctx, id); err != nil {
			return Document{}, err
		}
	}

	entry, err := b.store.IndexEntryFor(ctx, id, kind)
	switch {
	case err == nil:
		doc.Indexed = true
		doc.Body = entry.Body
	case !errors.Is(err, db.ErrNotFound):
		return Document{}, err
	}
	return doc, nil
}
