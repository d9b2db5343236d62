package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/entities"
	"github.com/NewsNowIndy/Dashboard/internal/index"
	"github.com/NewsNowIndy/Dashboard/internal/search"
)

type fixture struct {
	store *db.Store
	h     *Handlers
	doc   document.Ref
	media document.Ref
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store, err := db.OpenAndInit(ctx, filepath.Join(t.TempDir(), "dashboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	projectID, err := store.CreateProject(ctx, "council", "City Council")
	require.NoError(t, err)
	docID, err := store.InsertProjectDocument(ctx, db.ProjectDocument{
		ProjectSlug: "council", Filename: "minutes.pdf", StoredPath: "/x/minutes.pdf",
		MimeType: "application/pdf", Notes: "ask about item 4",
	})
	require.NoError(t, err)
	mediaID, err := store.InsertMedia(ctx, db.MediaItem{
		Title: "hearing", Transcript: "Maria Lopez asked about the budget", ProjectID: projectID,
	})
	require.NoError(t, err)

	doc, err := store.GetRef(ctx, document.Project, docID)
	require.NoError(t, err)
	media, err := store.GetRef(ctx, document.Media, mediaID)
	require.NoError(t, err)

	w := index.NewWriter(store, nil)
	require.NoError(t, w.Upsert(ctx, doc, "minutes.pdf", "the budget vote passed; Maria Lopez dissented", ""))
	require.NoError(t, w.Upsert(ctx, media, "hearing", media.Transcript, ""))

	ents := entities.New(store, nil, nil)
	_, err = ents.Rebuild(ctx)
	require.NoError(t, err)

	return &fixture{
		store: store,
		h:     NewHandlers(store, search.New(store, search.Options{}), ents),
		doc:   doc,
		media: media,
	}
}

func TestSearchDocumentsHandler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, out, err := f.h.SearchDocumentsHandler(ctx, nil, SearchDocumentsInput{Query: "budget"})
	require.NoError(t, err)
	res := out.(SearchDocumentsOutput)
	require.Equal(t, search.PhaseExact, res.Phase)
	require.Equal(t, 2, res.Total)

	_, out, err = f.h.SearchDocumentsHandler(ctx, nil, SearchDocumentsInput{Query: "budget", Limit: 1})
	require.NoError(t, err)
	require.Len(t, out.(SearchDocumentsOutput).Results, 1)

	_, out, err = f.h.SearchDocumentsHandler(ctx, nil, SearchDocumentsInput{Query: "zoning"})
	require.NoError(t, err)
	require.Empty(t, out.(SearchDocumentsOutput).Results)
	require.NotNil(t, out.(SearchDocumentsOutput).Results)
}

func TestEntityTools(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, out, err := f.h.ListEntitiesHandler(ctx, nil, ListEntitiesInput{Kind: "person", Query: "lopez"})
	require.NoError(t, err)
	list := out.(ListEntitiesOutput)
	require.Equal(t, 1, list.Total)
	require.Equal(t, "Maria Lopez", list.Entities[0].Name)
	require.Equal(t, 2, list.Entities[0].DocCount)

	_, out, err = f.h.EntityDetailHandler(ctx, nil, EntityDetailInput{ID: list.Entities[0].ID})
	require.NoError(t, err)
	detail := out.(entities.Detail)
	require.Len(t, detail.Mentions, 2)

	_, _, err = f.h.EntityDetailHandler(ctx, nil, EntityDetailInput{ID: 9999})
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestListEntitiesEmpty(t *testing.T) {
	f := newFixture(t)
	_, out, err := f.h.ListEntitiesHandler(context.Background(), nil, ListEntitiesInput{Query: "nobody"})
	require.NoError(t, err)
	require.NotNil(t, out.(ListEntitiesOutput).Entities)
	require.Zero(t, out.(ListEntitiesOutput).Total)
}

func TestReadDocumentHandler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, out, err := f.h.ReadDocumentHandler(ctx, nil, ReadDocumentInput{Source: "project", ID: f.doc.ID})
	require.NoError(t, err)
	doc := out.(ReadDocumentOutput)
	require.True(t, doc.Indexed)
	require.Equal(t, "City Council", doc.Project)
	require.Equal(t, "ask about item 4", doc.Notes)
	require.Contains(t, doc.Content, "budget vote")

	_, out, err = f.h.ReadDocumentHandler(ctx, nil, ReadDocumentInput{Source: "media", ID: f.media.ID})
	require.NoError(t, err)
	require.Equal(t, "hearing", out.(ReadDocumentOutput).Title)

	_, _, err = f.h.ReadDocumentHandler(ctx, nil, ReadDocumentInput{Source: "invoice", ID: 1})
	require.Error(t, err)

	_, _, err = f.h.ReadDocumentHandler(ctx, nil, ReadDocumentInput{Source: "attachment", ID: f.doc.ID})
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestNewServer(t *testing.T) {
	f := newFixture(t)
	if s := NewServer(f.store, search.New(f.store, search.Options{}), entities.New(f.store, nil, nil), "test"); s == nil {
		t.Fatal("NewServer() = nil")
	}
}
