package entities

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/events"
)

func TestRegexClassifier(t *testing.T) {
	tests := []struct {
		input    string
		expected []Candidate
	}{
		{"John Smith", []Candidate{{"John Smith", Person}}},
		{"CITY HALL", []Candidate{{"CITY HALL", Org}}},
		{"FBI AND DEA", []Candidate{{"FBI AND DEA", Org}}},
		{"ACLU", nil},
		{"lowercase words only here", nil},
		{"Al Bo", []Candidate{{"Al Bo", Person}}},
	}

	c := NewRegexClassifier()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := c.Classify(tt.input); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClassifierAgencyHint(t *testing.T) {
	got := NewRegexClassifier().Classify("records from the marion county sheriff")
	found := false
	for _, c := range got {
		if c.Kind == Org && c.Name == "records from the marion county" {
			found = true
		}
	}
	if !found {
		t.Errorf("Classify() = %v, want an org phrase containing the hint", got)
	}
}

func TestIsUpper(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"IMPD", true},
		{"A.B.C. & CO", true},
		{"Impd", false},
		{"123 - .", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isUpper(tt.input); got != tt.expected {
			t.Errorf("isUpper(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

type fixture struct {
	store *db.Store
	svc   *Service
	bus   *events.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := db.OpenAndInit(context.Background(), filepath.Join(t.TempDir(), "dashboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	bus := events.New()
	return &fixture{store: store, svc: New(store, nil, bus), bus: bus}
}

func (f *fixture) index(t *testing.T, id int64, src document.Kind, title, body string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.WithTx(ctx, func(tx *sql.Tx) error {
		return db.UpsertIndexTx(ctx, tx, db.IndexEntry{DocID: id, Source: src, Title: title, Body: body}, "")
	}))
}

func findEntity(list []Entity, name string, kind Kind) *Entity {
	for i := range list {
		if list[i].Name == name && list[i].Kind == kind {
			return &list[i]
		}
	}
	return nil
}

// TestRebuildDeduplicates verifies one entity per case-insensitive name and
// one mention per document.
func TestRebuildDeduplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.index(t, 1, document.Project, "memo.pdf", "John Smith met the board.")
	f.index(t, 2, document.Project, "letter.pdf", "Signed, John Smith. Copy to John Smith.")

	stats, err := f.svc.Rebuild(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Documents)

	list, err := f.svc.Index(ctx, IndexOptions{Kind: Person})
	require.NoError(t, err)
	john := findEntity(list, "John Smith", Person)
	require.NotNil(t, john)
	require.Equal(t, 2, john.DocCount)
	require.Equal(t, 3, john.Occurrences)

	detail, err := f.svc.Get(ctx, john.ID)
	require.NoError(t, err)
	require.Len(t, detail.Mentions, 2)
}

func TestRebuildCaseInsensitiveDedup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.index(t, 1, document.Project, "", "MARION COUNTY")
	f.index(t, 2, document.Project, "", "Marion County")

	_, err := f.svc.Rebuild(ctx)
	require.NoError(t, err)

	orgs, err := f.svc.Index(ctx, IndexOptions{Kind: Org, Query: "marion county"})
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	require.Equal(t, "MARION COUNTY", orgs[0].Name)
	require.Equal(t, 2, orgs[0].DocCount)
}

// TestRebuildKeepsSourcesApart verifies mentions in project 5 and attachment
// 5 count as two documents.
func TestRebuildKeepsSourcesApart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.index(t, 5, document.Project, "doc.pdf", "Jane Doe")
	f.index(t, 5, document.Attachment, "att.pdf", "Jane Doe")

	_, err := f.svc.Rebuild(ctx)
	require.NoError(t, err)

	list, err := f.svc.Index(ctx, IndexOptions{})
	require.NoError(t, err)
	jane := findEntity(list, "Jane Doe", Person)
	require.NotNil(t, jane)
	require.Equal(t, 2, jane.DocCount)

	detail, err := f.svc.Get(ctx, jane.ID)
	require.NoError(t, err)
	sources := map[document.Kind]bool{}
	for _, m := range detail.Mentions {
		sources[m.Source] = true
	}
	require.True(t, sources[document.Project])
	require.True(t, sources[document.Attachment])
}

func TestRebuildReplacesPreviousRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.index(t, 1, document.Project, "doc.pdf", "Jane Doe")
	_, err := f.svc.Rebuild(ctx)
	require.NoError(t, err)

	f.index(t, 1, document.Project, "doc.pdf", "Robert Brown")
	_, err = f.svc.Rebuild(ctx)
	require.NoError(t, err)

	list, err := f.svc.Index(ctx, IndexOptions{})
	require.NoError(t, err)
	require.Nil(t, findEntity(list, "Jane Doe", Person))
	require.NotNil(t, findEntity(list, "Robert Brown", Person))
}

// cancelingClassifier cancels the rebuild context on its first call so the
// next statement fails mid-transaction.
type cancelingClassifier struct {
	cancel context.CancelFunc
}

func (c cancelingClassifier) Classify(string) []Candidate {
	c.cancel()
	return []Candidate{{"Someone Else", Person}}
}

func TestRebuildFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.index(t, 1, document.Project, "doc.pdf", "Jane Doe")
	_, err := f.svc.Rebuild(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	failing := New(f.store, cancelingClassifier{cancel: cancel}, nil)
	_, err = failing.Rebuild(ctx)
	require.Error(t, err)

	list, err := f.svc.Index(context.Background(), IndexOptions{})
	require.NoError(t, err)
	require.NotNil(t, findEntity(list, "Jane Doe", Person))
}

func TestIndexResolvesProjectNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	projectID, err := f.store.CreateProject(ctx, "jail", "Jail Conditions")
	require.NoError(t, err)
	reqID, err := f.store.CreateRequest(ctx, db.Request{ProjectID: projectID})
	require.NoError(t, err)
	docID, err := f.store.InsertProjectDocument(ctx, db.ProjectDocument{ProjectSlug: "jail", Filename: "a.pdf", StoredPath: "/a.pdf"})
	require.NoError(t, err)
	attID, err := f.store.InsertAttachment(ctx, db.Attachment{RequestID: reqID, Filename: "b.pdf", StoredPath: "/b.enc"})
	require.NoError(t, err)

	f.index(t, docID, document.Project, "a.pdf", "Warden Keller")
	f.index(t, attID, document.Attachment, "b.pdf", "Warden Keller")

	_, err = f.svc.Rebuild(ctx)
	require.NoError(t, err)

	list, err := f.svc.Index(ctx, IndexOptions{Query: "keller"})
	require.NoError(t, err)
	warden := findEntity(list, "Warden Keller", Person)
	require.NotNil(t, warden)
	require.Equal(t, []string{"Jail Conditions"}, warden.Projects)
}

func TestGetMissingEntity(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), 404)
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestRebuildEmitsEvent(t *testing.T) {
	f := newFixture(t)
	f.index(t, 1, document.Project, "doc.pdf", "Jane Doe")

	var got events.EntitiesRebuilt
	events.Subscribe(f.bus, func(_ context.Context, e events.EntitiesRebuilt) error {
		got = e
		return nil
	})
	stats, err := f.svc.Rebuild(context.Background())
	require.NoError(t, err)
	require.Equal(t, stats.Entities, got.Entities)
	require.Equal(t, stats.Mentions, got.Mentions)
}
