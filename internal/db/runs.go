package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one recorded batch operation (backfill, reindex, entity rebuild).
type Run struct {
	ID         string
	Kind       string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running or after a crash
	Processed  int
	NonEmpty   int
	Failed     int
}

// StartRun records the start of a batch and returns its id.
func (s *Store) StartRun(ctx context.Context, kind string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO index_runs (id, kind, started_at) VALUES (?, ?, ?)`,
		id, kind, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// FinishRun stores the final counts of a batch.
func (s *Store) FinishRun(ctx context.Context, id string, processed, nonEmpty, failed int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE index_runs SET finished_at = ?, processed = ?, non_empty = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), processed, nonEmpty, failed, id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	return nil
}

// RecentRuns returns the latest runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, started_at, finished_at, processed, non_empty, failed
		 FROM index_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started string
		var finished sql.NullString
		if err := rows.Scan(&r.ID, &r.Kind, &started, &finished, &r.Processed, &r.NonEmpty, &r.Failed); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished.Valid {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
