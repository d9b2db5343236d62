package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Project groups documents, requests and media.
type Project struct {
	ID        int64  `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Request is a FOIA request; its attachments belong to the project it is
// filed under.
type Request struct {
	ID              int64
	ReferenceNumber string
	Agency          string
	ProjectID       int64 // 0 when unassigned
}

type ProjectDocument struct {
	ID          int64
	ProjectSlug string
	Title       string
	Filename    string
	StoredPath  string
	MimeType    string
	Size        int64
	Notes       string
}

type Attachment struct {
	ID         int64
	RequestID  int64
	Filename   string
	MimeType   string
	Size       int64
	StoredPath string
	OCRPath    string
	Encrypted  bool
}

type MediaItem struct {
	ID         int64
	Title      string
	Filename   string
	StoredPath string
	MimeType   string
	Transcript string
	ProjectID  int64
}

func (s *Store) CreateProject(ctx context.Context, slug, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (slug, name) VALUES (?, ?)`, slug, name)
	if err != nil {
		return 0, fmt.Errorf("create project %s: %w", slug, err)
	}
	return res.LastInsertId()
}

func (s *Store) ProjectBySlug(ctx context.Context, slug string) (Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name, status, created_at FROM projects WHERE slug = ?`, slug,
	).Scan(&p.ID, &p.Slug, &p.Name, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, fmt.Errorf("project %s: %w", slug, ErrNotFound)
	}
	return p, err
}

func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slug, name, status, created_at FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreateRequest(ctx context.Context, r Request) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO foia_requests (reference_number, agency, project_id) VALUES (?, ?, ?)`,
		nullString(r.ReferenceNumber), nullString(r.Agency), nullInt64(r.ProjectID))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertProjectDocument(ctx context.Context, d ProjectDocument) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO project_documents (project_slug, title, filename, stored_path, mime_type, size, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullString(d.ProjectSlug), nullString(d.Title), d.Filename, d.StoredPath,
		nullString(d.MimeType), d.Size, nullString(d.Notes))
	if err != nil {
		return 0, fmt.Errorf("insert project document: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertAttachment(ctx context.Context, a Attachment) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO foia_attachments (foia_request_id, filename, mime_type, size, stored_path, ocr_pdf_path, is_encrypted)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(a.RequestID), a.Filename, nullString(a.MimeType), a.Size, a.StoredPath,
		nullString(a.OCRPath), a.Encrypted)
	if err != nil {
		return 0, fmt.Errorf("insert attachment: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertMedia(ctx context.Context, m MediaItem) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO media_items (title, filename, stored_path, mime_type, transcript_text, project_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nullString(m.Title), nullString(m.Filename), nullString(m.StoredPath),
		nullString(m.MimeType), nullString(m.Transcript), nullInt64(m.ProjectID))
	if err != nil {
		return 0, fmt.Errorf("insert media: %w", err)
	}
	return res.LastInsertId()
}

// SetAttachmentOCRPath records the searchable copy of an attachment.
func (s *Store) SetAttachmentOCRPath(ctx context.Context, id int64, path string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE foia_attachments SET ocr_pdf_path = ? WHERE id = ?`, nullString(path), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("attachment %d: %w", id, ErrNotFound)
	}
	return nil
}

// ProjectDocumentNotes returns the free-form notes of a project document.
func (s *Store) ProjectDocumentNotes(ctx context.Context, id int64) (string, error) {
	var notes sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT notes FROM project_documents WHERE id = ?`, id).Scan(&notes)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("project document %d: %w", id, ErrNotFound)
	}
	return notes.String, err
}
