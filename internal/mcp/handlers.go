package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/entities"
	"github.com/NewsNowIndy/Dashboard/internal/search"
)

const defaultEntityLimit = 100

type Handlers struct {
	store    *db.Store
	search   *search.Engine
	entities *entities.Service
}

func NewHandlers(store *db.Store, engine *search.Engine, ents *entities.Service) *Handlers {
	return &Handlers{store: store, search: engine, entities: ents}
}

func (h *Handlers) SearchDocumentsHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchDocumentsInput) (*mcp.CallToolResult, any, error) {
	resp, err := h.search.Query(ctx, input.Query)
	if err != nil {
		return nil, nil, err
	}
	if input.Limit > 0 && input.Limit < len(resp.Results) {
		resp.Results = resp.Results[:input.Limit]
	}
	return nil, SearchDocumentsOutput{Phase: resp.Phase, Results: resp.Results, Total: len(resp.Results)}, nil
}

func (h *Handlers) ListEntitiesHandler(ctx context.Context, _ *mcp.CallToolRequest, input ListEntitiesInput) (*mcp.CallToolResult, any, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultEntityLimit
	}
	list, err := h.entities.Index(ctx, entities.IndexOptions{
		Kind:  entities.Kind(input.Kind),
		Query: input.Query,
		Limit: limit,
	})
	if err != nil {
		return nil, nil, err
	}
	if list == nil {
		list = []entities.Entity{}
	}
	return nil, ListEntitiesOutput{Entities: list, Total: len(list)}, nil
}

func (h *Handlers) EntityDetailHandler(ctx context.Context, _ *mcp.CallToolRequest, input EntityDetailInput) (*mcp.CallToolResult, any, error) {
	detail, err := h.entities.Get(ctx, input.ID)
	if err != nil {
		return nil, nil, err
	}
	return nil, detail, nil
}

// ReadDocumentHandler returns the indexed text of one document. Documents
// that were never indexed come back with empty content and Indexed false.
func (h *Handlers) ReadDocumentHandler(ctx context.Context, _ *mcp.CallToolRequest, input ReadDocumentInput) (*mcp.CallToolResult, any, error) {
	kind, err := document.ParseKind(input.Source)
	if err != nil {
		return nil, nil, err
	}
	ref, err := h.store.GetRef(ctx, kind, input.ID)
	if err != nil {
		return nil, nil, err
	}

	out := ReadDocumentOutput{
		Source:   string(ref.Kind),
		ID:       ref.ID,
		Title:    ref.DisplayTitle(),
		Filename: ref.Filename,
	}
	if ref.ProjectSlug != "" {
		out.Project = h.store.ProjectName(ctx, ref.ProjectSlug)
	}
	if kind == document.Project {
		if out.Notes, err = h.store.ProjectDocumentNotes(ctx, ref.ID); err != nil {
			return nil, nil, err
		}
	}

	entry, err := h.store.IndexEntryFor(ctx, ref.ID, kind)
	switch {
	case err == nil:
		out.Indexed = true
		out.Content = entry.Body
	case !errors.Is(err, db.ErrNotFound):
		return nil, nil, fmt.Errorf("read index entry: %w", err)
	}
	return nil, out, nil
}
