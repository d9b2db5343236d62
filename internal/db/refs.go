package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/NewsNowIndy/Dashboard/internal/document"
)

// Per-kind projections onto document.Ref. Attachments reach their project
// through the request; media through project_id.
var refQueries = map[document.Kind]string{
	document.Project: `
		SELECT d.id, COALESCE(d.title, ''), d.filename, COALESCE(d.mime_type, ''), d.stored_path,
			'', 0, '', COALESCE(d.project_slug, '')
		FROM project_documents d`,
	document.Attachment: `
		SELECT d.id, '', d.filename, COALESCE(d.mime_type, ''), d.stored_path,
			COALESCE(d.ocr_pdf_path, ''), d.is_encrypted, '', COALESCE(p.slug, '')
		FROM foia_attachments d
		LEFT JOIN foia_requests r ON r.id = d.foia_request_id
		LEFT JOIN projects p ON p.id = r.project_id`,
	document.Media: `
		SELECT d.id, COALESCE(d.title, ''), COALESCE(d.filename, ''), COALESCE(d.mime_type, ''),
			COALESCE(d.stored_path, ''), '', 0, COALESCE(d.transcript_text, ''), COALESCE(p.slug, '')
		FROM media_items d
		LEFT JOIN projects p ON p.id = d.project_id`,
}

const notIndexed = ` WHERE NOT EXISTS (
		SELECT 1 FROM index_state st
		WHERE st.source = ? AND st.doc_id = d.id AND st.fts_rowid IS NOT NULL AND st.partial = 0)`

// ListRefs returns every document of the given kinds (all kinds when none are
// given), ordered by kind then id.
func (s *Store) ListRefs(ctx context.Context, kinds ...document.Kind) ([]document.Ref, error) {
	if len(kinds) == 0 {
		kinds = document.Kinds
	}
	var out []document.Ref
	for _, k := range kinds {
		refs, err := s.queryRefs(ctx, k, refQueries[k]+` ORDER BY d.id`)
		if err != nil {
			return nil, err
		}
		out = append(out, refs...)
	}
	return out, nil
}

// MissingRefs returns documents with no complete index row for their
// (id, source): never indexed, or indexed from a page-capped read.
// Eligibility is not applied here.
func (s *Store) MissingRefs(ctx context.Context) ([]document.Ref, error) {
	var out []document.Ref
	for _, k := range document.Kinds {
		refs, err := s.queryRefs(ctx, k, refQueries[k]+notIndexed+` ORDER BY d.id`, string(k))
		if err != nil {
			return nil, err
		}
		out = append(out, refs...)
	}
	return out, nil
}

// GetRef loads a single document.
func (s *Store) GetRef(ctx context.Context, kind document.Kind, id int64) (document.Ref, error) {
	q, ok := refQueries[kind]
	if !ok {
		return document.Ref{}, fmt.Errorf("unknown document source %q", kind)
	}
	refs, err := s.queryRefs(ctx, kind, q+` WHERE d.id = ?`, id)
	if err != nil {
		return document.Ref{}, err
	}
	if len(refs) == 0 {
		return document.Ref{}, fmt.Errorf("%s:%d: %w", kind, id, ErrNotFound)
	}
	return refs[0], nil
}

func (s *Store) queryRefs(ctx context.Context, kind document.Kind, query string, args ...any) ([]document.Ref, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s documents: %w", kind, err)
	}
	defer rows.Close()

	var out []document.Ref
	for rows.Next() {
		ref := document.Ref{Kind: kind}
		if err := rows.Scan(&ref.ID, &ref.Title, &ref.Filename, &ref.MimeType, &ref.StoredPath,
			&ref.OCRPath, &ref.Encrypted, &ref.Transcript, &ref.ProjectSlug); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// ProjectName resolves the display name of a project slug. An unknown slug
// yields the slug itself.
func (s *Store) ProjectName(ctx context.Context, slug string) string {
	if slug == "" {
		return ""
	}
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM projects WHERE slug = ?`, slug).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) || err != nil {
		return slug
	}
	return name
}
