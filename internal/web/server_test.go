package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/entities"
	"github.com/NewsNowIndy/Dashboard/internal/index"
	"github.com/NewsNowIndy/Dashboard/internal/search"
)

type site struct {
	store  *db.Store
	server *Server
	doc    document.Ref
	att    document.Ref
}

// newSite builds a server over a project document and an attachment that
// share id 1, both indexed, with the entity registry rebuilt.
func newSite(t *testing.T) *site {
	t.Helper()
	ctx := context.Background()
	store, err := db.OpenAndInit(ctx, filepath.Join(t.TempDir(), "dashboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.CreateProject(ctx, "jail", "Jail Deaths")
	require.NoError(t, err)
	docID, err := store.InsertProjectDocument(ctx, db.ProjectDocument{
		ProjectSlug: "jail", Title: "autopsy.pdf", Filename: "autopsy.pdf",
		StoredPath: "/nowhere/autopsy.pdf", MimeType: "application/pdf",
		Notes: "Follow up with **records** clerk.\n\n```json\n{\"status\": \"pending\"}\n```",
	})
	require.NoError(t, err)
	attID, err := store.InsertAttachment(ctx, db.Attachment{
		Filename: "response.pdf", StoredPath: "/nowhere/response.pdf", MimeType: "application/pdf",
	})
	require.NoError(t, err)

	doc, err := store.GetRef(ctx, document.Project, docID)
	require.NoError(t, err)
	att, err := store.GetRef(ctx, document.Attachment, attID)
	require.NoError(t, err)

	w := index.NewWriter(store, nil)
	require.NoError(t, w.Upsert(ctx, doc, doc.DisplayTitle(), "John Smith died in Indianapolis custody <script>", ""))
	require.NoError(t, w.Upsert(ctx, att, att.DisplayTitle(), "the request for Indianapolis records was denied", ""))

	ents := entities.New(store, nil, nil)
	_, err = ents.Rebuild(ctx)
	require.NoError(t, err)

	srv := NewServer(store, search.New(store, search.Options{}), ents, "127.0.0.1:0")
	return &site{store: store, server: srv, doc: doc, att: att}
}

func (s *site) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (s *site) page(t *testing.T, path string) *goquery.Document {
	t.Helper()
	rec := s.get(t, path)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestSearchPage(t *testing.T) {
	s := newSite(t)
	doc := s.page(t, "/search?q=indianapolis")

	results := doc.Find("li.result")
	require.Equal(t, 2, results.Length())

	sources := map[string]bool{}
	results.Each(func(_ int, li *goquery.Selection) {
		src, _ := li.Attr("data-source")
		sources[src] = true
		require.Equal(t, 1, li.Find(".excerpt b").Length(), "excerpt should highlight one hit")
	})
	require.True(t, sources["project"])
	require.True(t, sources["attachment"])

	project := doc.Find(`li.result[data-source="project"] .result-project`).Text()
	require.Equal(t, "Jail Deaths", project)
}

func TestSearchPageEscapesDocumentText(t *testing.T) {
	s := newSite(t)
	rec := s.get(t, "/search?q=custody")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "<script>")
	require.Contains(t, rec.Body.String(), "<b>custody</b>")
}

func TestSearchPagePrefixPhase(t *testing.T) {
	s := newSite(t)
	doc := s.page(t, "/search?q=India")
	require.Equal(t, 2, doc.Find("li.result").Length())
	require.Contains(t, doc.Find("p.summary").Text(), "prefix")
}

func TestSearchPageEmptyQuery(t *testing.T) {
	s := newSite(t)
	doc := s.page(t, "/search")
	require.Equal(t, 0, doc.Find("li.result").Length())
	require.Equal(t, 1, doc.Find("form.search-page-form").Length())
}

func TestSearchPageNoMatches(t *testing.T) {
	s := newSite(t)
	doc := s.page(t, `/search?q=%22unbalanced`)
	require.Equal(t, 0, doc.Find("li.result").Length())
	require.Equal(t, 1, doc.Find("p.empty").Length())
}

func TestAPISearch(t *testing.T) {
	s := newSite(t)

	rec := s.get(t, "/api/search?q=indianapolis&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp search.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, search.PhaseExact, resp.Phase)
	require.Len(t, resp.Results, 1)

	rec = s.get(t, "/api/search")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, "missing_param", errResp.Code)
}

func TestIndexPage(t *testing.T) {
	s := newSite(t)
	doc := s.page(t, "/")

	row := doc.Find(`tr.count-row[data-source="project"] td`)
	require.Equal(t, 3, row.Length())
	require.Equal(t, "1", strings.TrimSpace(row.Eq(1).Text()))
	require.Equal(t, "1", strings.TrimSpace(row.Eq(2).Text()))
}

func TestEntityPages(t *testing.T) {
	s := newSite(t)
	list := s.page(t, "/entities?kind=person")

	link := list.Find("tr.entity a").FilterFunction(func(_ int, a *goquery.Selection) bool {
		return a.Text() == "John Smith"
	})
	require.Equal(t, 1, link.Length())

	href, _ := link.Attr("href")
	detail := s.page(t, href)
	require.Equal(t, "John Smith", detail.Find("h1.entity-name").Text())
	require.Equal(t, 1, detail.Find("li.mention").Length())

	mention, _ := detail.Find("li.mention a").Attr("href")
	require.Equal(t, "/documents/project/"+strconv.FormatInt(s.doc.ID, 10), mention)
}

func TestEntityNotFound(t *testing.T) {
	s := newSite(t)
	require.Equal(t, http.StatusNotFound, s.get(t, "/entities/9999").Code)
	require.Equal(t, http.StatusNotFound, s.get(t, "/entities/abc").Code)
}

func TestDocumentPage(t *testing.T) {
	s := newSite(t)
	doc := s.page(t, "/documents/project/"+strconv.FormatInt(s.doc.ID, 10))

	require.Equal(t, "autopsy.pdf", doc.Find("h1.doc-title").Text())
	require.Equal(t, "Jail Deaths", doc.Find("dd.doc-project").Text())
	require.Contains(t, doc.Find("pre.doc-body").Text(), "Indianapolis custody")
	require.Equal(t, "records", doc.Find(".notes strong").Text())
	require.Equal(t, 1, doc.Find(".notes .code-block").Length())
}

func TestDocumentPageKeepsSourcesApart(t *testing.T) {
	s := newSite(t)
	doc := s.page(t, "/documents/attachment/"+strconv.FormatInt(s.att.ID, 10))

	require.Equal(t, "attachment", doc.Find("dd.doc-source").Text())
	require.Contains(t, doc.Find("pre.doc-body").Text(), "request for Indianapolis records")
	require.Equal(t, 0, doc.Find(".notes").Length())
}

func TestDocumentNotFound(t *testing.T) {
	s := newSite(t)
	require.Equal(t, http.StatusNotFound, s.get(t, "/documents/project/42").Code)
	require.Equal(t, http.StatusNotFound, s.get(t, "/documents/invoice/1").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newSite(t)
	rec := s.get(t, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "dashboard_documents_indexed_total")
}

func TestExcerptHTML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"a <b>hit</b> here", "a <b>hit</b> here"},
		{"<script>x</script>", "&lt;script&gt;x&lt;/script&gt;"},
		{"Tom & Jerry", "Tom &amp; Jerry"},
	}
	for _, tt := range tests {
		if got := string(excerptHTML(tt.input)); got != tt.expected {
			t.Errorf("excerptHTML(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
