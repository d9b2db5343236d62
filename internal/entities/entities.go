// Package entities maintains the registry of people and organizations named
// in indexed documents.
package entities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/events"
	"github.com/NewsNowIndy/Dashboard/internal/metrics"
)

// Stats summarizes a rebuild.
type Stats struct {
	Documents int
	Entities  int
	Mentions  int // distinct (entity, document) pairs
}

// Service rebuilds and queries the entity registry.
type Service struct {
	store      *db.Store
	classifier TextClassifier
	bus        *events.Bus
}

// New creates a Service. A nil classifier uses the RegexClassifier.
func New(store *db.Store, classifier TextClassifier, bus *events.Bus) *Service {
	if classifier == nil {
		classifier = NewRegexClassifier()
	}
	return &Service{store: store, classifier: classifier, bus: bus}
}

type indexedDoc struct {
	id     int64
	source string
	text   string
}

// Rebuild replaces every entity and mention with those found in the current
// index, in a single transaction. On error nothing changes.
func (s *Service) Rebuild(ctx context.Context) (Stats, error) {
	var stats Stats
	start := time.Now()

	err := s.store.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entity_mentions`); err != nil {
			return fmt.Errorf("clear mentions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM entities`); err != nil {
			return fmt.Errorf("clear entities: %w", err)
		}

		docs, err := loadIndexed(ctx, tx)
		if err != nil {
			return err
		}
		stats.Documents = len(docs)

		insertEntity, err := tx.PrepareContext(ctx, `INSERT INTO entities (name, kind) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer insertEntity.Close()

		insertMention, err := tx.PrepareContext(ctx, `
			INSERT INTO entity_mentions (entity_id, doc_id, source, occurrences, created_at)
			VALUES (?, ?, ?, 1, ?)
			ON CONFLICT (entity_id, doc_id, source) DO UPDATE SET occurrences = occurrences + 1`)
		if err != nil {
			return err
		}
		defer insertMention.Close()

		now := time.Now().UTC().Format(time.RFC3339)
		ids := make(map[string]int64) // lower(name) + kind -> entity id

		for _, d := range docs {
			for _, c := range s.classifier.Classify(d.text) {
				key := strings.ToLower(c.Name) + "\x00" + string(c.Kind)
				id, ok := ids[key]
				if !ok {
					res, err := insertEntity.ExecContext(ctx, c.Name, string(c.Kind))
					if err != nil {
						return fmt.Errorf("insert entity %q: %w", c.Name, err)
					}
					if id, err = res.LastInsertId(); err != nil {
						return err
					}
					ids[key] = id
				}
				if _, err := insertMention.ExecContext(ctx, id, d.id, d.source, now); err != nil {
					return fmt.Errorf("insert mention: %w", err)
				}
			}
		}

		stats.Entities = len(ids)
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM entity_mentions`).Scan(&stats.Mentions)
	})
	if err != nil {
		metrics.EntityRebuilds.WithLabelValues("failed").Inc()
		return Stats{}, fmt.Errorf("rebuild entities: %w", err)
	}

	metrics.EntityRebuilds.WithLabelValues("ok").Inc()
	metrics.EntitiesTotal.Set(float64(stats.Entities))
	log.Info("entities rebuilt", "documents", stats.Documents, "entities", stats.Entities,
		"mentions", stats.Mentions, "duration", time.Since(start).Round(time.Millisecond))
	s.bus.Emit(ctx, events.EntitiesRebuilt{Entities: stats.Entities, Mentions: stats.Mentions})
	return stats, nil
}

func loadIndexed(ctx context.Context, tx *sql.Tx) ([]indexedDoc, error) {
	rows, err := tx.QueryContext(ctx, `SELECT doc_id, source, title, body FROM doc_fts ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("scan index: %w", err)
	}
	defer rows.Close()

	var docs []indexedDoc
	for rows.Next() {
		var d indexedDoc
		var title, body sql.NullString
		if err := rows.Scan(&d.id, &d.source, &title, &body); err != nil {
			return nil, err
		}
		d.text = title.String + " " + body.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Entity is one registry row with its aggregated reach.
type Entity struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Kind        Kind     `json:"kind"`
	DocCount    int      `json:"doc_count"`
	Occurrences int      `json:"occurrences"`
	Projects    []string `json:"projects,omitempty"`
}

// Mention is one document that names an entity.
type Mention struct {
	DocID       int64         `json:"doc_id"`
	Source      document.Kind `json:"source"`
	Title       string        `json:"title"`
	ProjectName string        `json:"project_name,omitempty"`
	Occurrences int           `json:"occurrences"`
}

// Detail is an entity with every document mentioning it.
type Detail struct {
	Entity
	Mentions []Mention `json:"mentions"`
}

// IndexOptions filters Index.
type IndexOptions struct {
	Kind  Kind   // empty for all
	Query string // case-insensitive substring of the name
	Limit int    // 0 for no limit
}

// mentionsResolved gives every mention a "source:id" document key and the
// display name of the project its document belongs to.
const mentionsResolved = `
WITH mentions_resolved AS (
	SELECT m.entity_id, m.doc_id, m.source, m.occurrences,
		m.source || ':' || m.doc_id AS doc_key,
		CASE m.source
			WHEN 'project' THEN (
				SELECT COALESCE(p.name, d.project_slug) FROM project_documents d
				LEFT JOIN projects p ON p.slug = d.project_slug
				WHERE d.id = m.doc_id)
			WHEN 'attachment' THEN (
				SELECT p.name FROM foia_attachments a
				JOIN foia_requests r ON r.id = a.foia_request_id
				JOIN projects p ON p.id = r.project_id
				WHERE a.id = m.doc_id)
			WHEN 'media' THEN (
				SELECT p.name FROM media_items mi
				JOIN projects p ON p.id = mi.project_id
				WHERE mi.id = m.doc_id)
		END AS project_name
	FROM entity_mentions m
)`

// Index lists entities with their distinct document counts, most widely
// mentioned first.
func (s *Service) Index(ctx context.Context, opts IndexOptions) ([]Entity, error) {
	query := mentionsResolved + `
		SELECT e.id, e.name, e.kind,
			COUNT(DISTINCT mr.doc_key) AS doc_count,
			COALESCE(SUM(mr.occurrences), 0),
			COALESCE(GROUP_CONCAT(DISTINCT mr.project_name), '')
		FROM entities e
		LEFT JOIN mentions_resolved mr ON mr.entity_id = e.id
		WHERE (? = '' OR e.kind = ?)
			AND (? = '' OR lower(e.name) LIKE '%' || lower(?) || '%')
		GROUP BY e.id
		ORDER BY doc_count DESC, e.name ASC`
	args := []any{string(opts.Kind), string(opts.Kind), opts.Query, opts.Query}
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.store.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("entity index: %w", err)
	}
	defer rows.Close()

	var out []Entity
	for rows.Next() {
		var e Entity
		var kind, projects string
		if err := rows.Scan(&e.ID, &e.Name, &kind, &e.DocCount, &e.Occurrences, &projects); err != nil {
			return nil, err
		}
		e.Kind = Kind(kind)
		e.Projects = splitProjects(projects)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns a single entity with its documents across every source.
func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	var d Detail
	var kind string
	err := s.store.DB().QueryRowContext(ctx,
		`SELECT id, name, kind FROM entities WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return Detail{}, fmt.Errorf("entity %d: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return Detail{}, err
	}
	d.Kind = Kind(kind)

	rows, err := s.store.DB().QueryContext(ctx, mentionsResolved+`
		SELECT mr.doc_id, mr.source, COALESCE(f.title, ''), COALESCE(mr.project_name, ''), mr.occurrences
		FROM mentions_resolved mr
		LEFT JOIN index_state st ON st.doc_id = mr.doc_id AND st.source = mr.source
		LEFT JOIN doc_fts f ON f.rowid = st.fts_rowid
		WHERE mr.entity_id = ?
		ORDER BY mr.occurrences DESC, mr.source, mr.doc_id`, id)
	if err != nil {
		return Detail{}, fmt.Errorf("entity mentions: %w", err)
	}
	defer rows.Close()

	projects := map[string]bool{}
	for rows.Next() {
		var m Mention
		var src string
		if err := rows.Scan(&m.DocID, &src, &m.Title, &m.ProjectName, &m.Occurrences); err != nil {
			return Detail{}, err
		}
		m.Source = document.Kind(src)
		d.Mentions = append(d.Mentions, m)
		d.Occurrences += m.Occurrences
		if m.ProjectName != "" && !projects[m.ProjectName] {
			projects[m.ProjectName] = true
			d.Projects = append(d.Projects, m.ProjectName)
		}
	}
	d.DocCount = len(d.Mentions)
	return d, rows.Err()
}

func splitProjects(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
