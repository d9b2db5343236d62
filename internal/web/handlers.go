package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/entities"
)

// bodyPreviewChars bounds the extracted text shown on a document page.
const bodyPreviewChars = 4000

type indexPageData struct {
	Counts db.Counts
	Kinds  []document.Kind
	Runs   []db.Run
}

type entitiesPageData struct {
	Query    string
	Kind     string
	Entities []entities.Entity
}

type documentPageData struct {
	Ref         document.Ref
	ProjectName string
	Body        string
	Indexed     bool
	Notes       template.HTML
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts, err := s.store.Counts(ctx)
	if err != nil {
		s.serverError(w, "load counts", err)
		return
	}
	runs, err := s.store.RecentRuns(ctx, 5)
	if err != nil {
		s.serverError(w, "load runs", err)
		return
	}

	data := indexPageData{Counts: counts, Kinds: document.Kinds, Runs: runs}
	if err := s.renderTemplate(w, "index.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := entitiesPageData{Query: q.Get("q"), Kind: q.Get("kind")}

	list, err := s.entities.Index(r.Context(), entities.IndexOptions{
		Kind:  entities.Kind(data.Kind),
		Query: data.Query,
		Limit: parseIntParam(r, "limit", 200),
	})
	if err != nil {
		s.serverError(w, "list entities", err)
		return
	}
	data.Entities = list

	if err := s.renderTemplate(w, "entities.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	detail, err := s.entities.Get(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, "load entity", err)
		return
	}

	if err := s.renderTemplate(w, "entity.html", detail); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleDocument shows a document's metadata, the text the index holds for
// it and, for project documents, its Markdown notes.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, err := document.ParseKind(r.PathValue("source"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ref, err := s.store.GetRef(ctx, kind, id)
	if errors.Is(err, db.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, "load document", err)
		return
	}

	data := documentPageData{Ref: ref}
	if ref.ProjectSlug != "" {
		data.ProjectName = s.store.ProjectName(ctx, ref.ProjectSlug)
	}

	entry, err := s.store.IndexEntryFor(ctx, id, kind)
	switch {
	case err == nil:
		data.Indexed = true
		data.Body = entry.Body
		if len([]rune(data.Body)) > bodyPreviewChars {
			data.Body = string([]rune(data.Body)[:bodyPreviewChars]) + "…"
		}
	case !errors.Is(err, db.ErrNotFound):
		s.serverError(w, "load index entry", err)
		return
	}

	if kind == document.Project {
		notes, err := s.store.ProjectDocumentNotes(ctx, id)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			s.serverError(w, "load notes", err)
			return
		}
		if notes != "" {
			rendered, err := s.notes.Render([]byte(notes))
			if err != nil {
				log.Warn("render notes failed", "doc", ref.Key(), "err", err)
			} else {
				data.Notes = template.HTML(rendered)
			}
		}
	}

	if err := s.renderTemplate(w, "document.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) serverError(w http.ResponseWriter, what string, err error) {
	log.Error(what, "err", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
