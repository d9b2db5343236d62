// Package search runs full-text queries over every document source.
package search

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/metrics"
)

const (
	DefaultLimit         = 50
	DefaultSnippetTokens = 12
)

// Phase names the match strategy that produced a response.
type Phase string

const (
	PhaseNone   Phase = "none"
	PhaseExact  Phase = "exact"
	PhasePrefix Phase = "prefix"
)

// Result is one matching document. Excerpt contains <b>…</b> around hits and
// must be rendered as trusted markup.
type Result struct {
	ID          int64         `json:"id"`
	Source      document.Kind `json:"source"`
	Title       string        `json:"title"`
	ProjectSlug string        `json:"project_slug,omitempty"`
	ProjectName string        `json:"project_name,omitempty"`
	Excerpt     string        `json:"excerpt"`
	Score       float64       `json:"score"`
}

// Response carries results along with the phase that found them.
type Response struct {
	Query   string   `json:"query"`
	Phase   Phase    `json:"phase"`
	Results []Result `json:"results"`
}

type Options struct {
	Limit         int
	SnippetTokens int
}

type Engine struct {
	store *db.Store
	opts  Options
}

func New(store *db.Store, opts Options) *Engine {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.SnippetTokens <= 0 {
		opts.SnippetTokens = DefaultSnippetTokens
	}
	return &Engine{store: store, opts: opts}
}

// Search returns results for q, best match first.
func (e *Engine) Search(ctx context.Context, q string) ([]Result, error) {
	resp, err := e.Query(ctx, q)
	return resp.Results, err
}

// Query runs the exact phrase phase and, only when it finds nothing, the
// prefix phase. Blank queries and FTS syntax errors yield no results.
func (e *Engine) Query(ctx context.Context, q string) (Response, error) {
	resp := Response{Query: q, Phase: PhaseNone, Results: []Result{}}
	terms := Terms(q)
	if len(terms) == 0 {
		return resp, nil
	}

	for _, phase := range []struct {
		name  Phase
		match string
	}{
		{PhaseExact, ExactQuery(terms)},
		{PhasePrefix, PrefixQuery(terms)},
	} {
		results, err := e.run(ctx, phase.match)
		if err != nil {
			return resp, err
		}
		if len(results) > 0 {
			resp.Phase = phase.name
			resp.Results = results
			break
		}
	}

	metrics.SearchQueries.WithLabelValues(string(resp.Phase)).Inc()
	return resp, nil
}

// Terms splits q on whitespace and drops words without a letter or digit,
// which the tokenizer would reduce to an empty phrase matching nothing.
func Terms(q string) []string {
	var out []string
	for _, t := range strings.Fields(q) {
		if strings.IndexFunc(t, isWordRune) >= 0 {
			out = append(out, t)
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ExactQuery ANDs every term as a quoted phrase: "t1" AND "t2".
func ExactQuery(terms []string) string {
	return join(terms, "")
}

// PrefixQuery ANDs every term as a prefix phrase: "t1"* AND "t2"*.
func PrefixQuery(terms []string) string {
	return join(terms, "*")
}

func join(terms []string, suffix string) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, quote(t)+suffix)
	}
	return strings.Join(parts, " AND ")
}

func quote(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}

// Each branch resolves the project display name for its source: documents by
// slug, attachments through their request, media by project_id.
const searchSQL = `
WITH hits AS MATERIALIZED (
	SELECT doc_id, source, title,
		bm25(doc_fts) AS score,
		snippet(doc_fts, 3, '<b>', '</b>', '…', %d) AS excerpt
	FROM doc_fts
	WHERE doc_fts MATCH ?
)
SELECT h.doc_id, h.source, h.title, COALESCE(d.project_slug, ''), COALESCE(p.name, d.project_slug, ''), h.excerpt, h.score
FROM hits h
JOIN project_documents d ON h.source = 'project' AND d.id = h.doc_id
LEFT JOIN projects p ON p.slug = d.project_slug
UNION ALL
SELECT h.doc_id, h.source, h.title, COALESCE(p.slug, ''), COALESCE(p.name, ''), h.excerpt, h.score
FROM hits h
JOIN foia_attachments a ON h.source = 'attachment' AND a.id = h.doc_id
LEFT JOIN foia_requests r ON r.id = a.foia_request_id
LEFT JOIN projects p ON p.id = r.project_id
UNION ALL
SELECT h.doc_id, h.source, h.title, COALESCE(p.slug, ''), COALESCE(p.name, ''), h.excerpt, h.score
FROM hits h
JOIN media_items m ON h.source = 'media' AND m.id = h.doc_id
LEFT JOIN projects p ON p.id = m.project_id
ORDER BY 7 ASC
LIMIT ?`

func (e *Engine) run(ctx context.Context, match string) ([]Result, error) {
	query := fmt.Sprintf(searchSQL, e.opts.SnippetTokens)
	rows, err := e.store.DB().QueryContext(ctx, query, match, e.opts.Limit)
	if err != nil {
		if isSyntaxError(err) {
			log.Debug("fts query rejected", "match", match, "err", err)
			return nil, nil
		}
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		var src string
		if err := rows.Scan(&r.ID, &src, &r.Title, &r.ProjectSlug, &r.ProjectName, &r.Excerpt, &r.Score); err != nil {
			return nil, err
		}
		r.Source = document.Kind(src)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		if isSyntaxError(err) {
			log.Debug("fts query rejected", "match", match, "err", err)
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func isSyntaxError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"fts5", "syntax error", "unterminated string", "malformed match"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
