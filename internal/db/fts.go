package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/NewsNowIndy/Dashboard/internal/document"
)

// IndexEntry is a doc_fts row.
type IndexEntry struct {
	DocID  int64
	Source document.Kind
	Title  string
	Body   string
	// Partial marks a body read from only the leading pages of the document.
	Partial bool
}

// IndexState records what was last indexed for a document.
type IndexState struct {
	DocID       int64
	Source      document.Kind
	ContentHash string
	BodyChars   int
	IndexedAt   string
	Partial     bool
}

// UpsertIndexTx replaces the index row for (entry.DocID, entry.Source) and its
// index_state inside tx. index_state keeps the doc_fts rowid so replacing a
// row never scans the FTS table.
func UpsertIndexTx(ctx context.Context, tx *sql.Tx, entry IndexEntry, contentHash string) error {
	if err := deleteFTSRowTx(ctx, tx, entry.DocID, entry.Source); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO doc_fts (doc_id, source, title, body) VALUES (?, ?, ?, ?)`,
		entry.DocID, string(entry.Source), entry.Title, entry.Body,
	)
	if err != nil {
		return fmt.Errorf("insert index row %s:%d: %w", entry.Source, entry.DocID, err)
	}
	rowid, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO index_state (doc_id, source, content_hash, body_chars, indexed_at, fts_rowid, partial)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (doc_id, source) DO UPDATE SET
			content_hash = excluded.content_hash,
			body_chars = excluded.body_chars,
			indexed_at = excluded.indexed_at,
			fts_rowid = excluded.fts_rowid,
			partial = excluded.partial`,
		entry.DocID, string(entry.Source), contentHash, utf8.RuneCountInString(entry.Body),
		time.Now().UTC().Format(time.RFC3339), rowid, entry.Partial,
	); err != nil {
		return fmt.Errorf("record index state %s:%d: %w", entry.Source, entry.DocID, err)
	}
	return nil
}

// DeleteIndexTx removes the index row and state for one document.
func DeleteIndexTx(ctx context.Context, tx *sql.Tx, docID int64, source document.Kind) error {
	if err := deleteFTSRowTx(ctx, tx, docID, source); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`DELETE FROM index_state WHERE doc_id = ? AND source = ?`, docID, string(source))
	return err
}

func deleteFTSRowTx(ctx context.Context, tx *sql.Tx, docID int64, source document.Kind) error {
	var rowid sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT fts_rowid FROM index_state WHERE doc_id = ? AND source = ?`, docID, string(source),
	).Scan(&rowid)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !rowid.Valid) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up index row %s:%d: %w", source, docID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM doc_fts WHERE rowid = ?`, rowid.Int64); err != nil {
		return fmt.Errorf("delete index row %s:%d: %w", source, docID, err)
	}
	return nil
}

// IndexEntryFor returns the indexed title and body of one document.
func (s *Store) IndexEntryFor(ctx context.Context, docID int64, source document.Kind) (IndexEntry, error) {
	e := IndexEntry{DocID: docID, Source: source}
	err := s.db.QueryRowContext(ctx, `
		SELECT f.title, f.body, st.partial FROM index_state st
		JOIN doc_fts f ON f.rowid = st.fts_rowid
		WHERE st.doc_id = ? AND st.source = ?`, docID, string(source),
	).Scan(&e.Title, &e.Body, &e.Partial)
	if errors.Is(err, sql.ErrNoRows) {
		return IndexEntry{}, fmt.Errorf("index row %s:%d: %w", source, docID, ErrNotFound)
	}
	return e, err
}

// CountIndexRows returns how many index rows exist for (docID, source). It
// scans doc_fts and is meant for diagnostics.
func (s *Store) CountIndexRows(ctx context.Context, docID int64, source document.Kind) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM doc_fts WHERE doc_id = ? AND source = ?`, docID, string(source),
	).Scan(&n)
	return n, err
}

// IndexStates returns the recorded state of every indexed document keyed by
// "source:id".
func (s *Store) IndexStates(ctx context.Context) (map[string]IndexState, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, source, content_hash, body_chars, indexed_at, partial FROM index_state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]IndexState)
	for rows.Next() {
		var st IndexState
		var src string
		if err := rows.Scan(&st.DocID, &src, &st.ContentHash, &st.BodyChars, &st.IndexedAt, &st.Partial); err != nil {
			return nil, err
		}
		st.Source = document.Kind(src)
		out[fmt.Sprintf("%s:%d", src, st.DocID)] = st
	}
	return out, rows.Err()
}

// CleanupOrphans removes index rows, index state and entity mentions whose
// (doc_id, source) no longer has a source row. It returns the number of index
// rows removed.
func (s *Store) CleanupOrphans(ctx context.Context) (int64, error) {
	const orphan = `
		(source = 'project' AND doc_id NOT IN (SELECT id FROM project_documents))
		OR (source = 'attachment' AND doc_id NOT IN (SELECT id FROM foia_attachments))
		OR (source = 'media' AND doc_id NOT IN (SELECT id FROM media_items))
		OR source NOT IN ('project', 'attachment', 'media')`

	var removed int64
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM doc_fts WHERE `+orphan)
		if err != nil {
			return fmt.Errorf("delete orphan index rows: %w", err)
		}
		removed, _ = res.RowsAffected()

		if _, err := tx.ExecContext(ctx, `DELETE FROM index_state WHERE `+orphan); err != nil {
			return fmt.Errorf("delete orphan index state: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM entity_mentions WHERE `+orphan); err != nil {
			return fmt.Errorf("delete orphan mentions: %w", err)
		}
		return nil
	})
	return removed, err
}

// Counts summarizes the database for the stats command and web landing page.
type Counts struct {
	Documents map[document.Kind]int
	Indexed   map[document.Kind]int
	Entities  int
	Mentions  int
}

func (s *Store) Counts(ctx context.Context) (Counts, error) {
	c := Counts{
		Documents: make(map[document.Kind]int),
		Indexed:   make(map[document.Kind]int),
	}
	tables := map[document.Kind]string{
		document.Project:    "project_documents",
		document.Attachment: "foia_attachments",
		document.Media:      "media_items",
	}
	for kind, table := range tables {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			return c, err
		}
		c.Documents[kind] = n
	}

	rows, err := s.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM index_state WHERE fts_rowid IS NOT NULL GROUP BY source`)
	if err != nil {
		return c, err
	}
	defer rows.Close()
	for rows.Next() {
		var src string
		var n int
		if err := rows.Scan(&src, &n); err != nil {
			return c, err
		}
		c.Indexed[document.Kind(src)] = n
	}
	if err := rows.Err(); err != nil {
		return c, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities`).Scan(&c.Entities); err != nil {
		return c, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entity_mentions`).Scan(&c.Mentions); err != nil {
		return c, err
	}
	return c, nil
}
