// Package index maintains the full-text index: the Writer owns single-row
// changes and the Orchestrator drives batch backfills over every source.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/events"
	"github.com/NewsNowIndy/Dashboard/internal/metrics"
)

// Writer applies index changes. Each call is its own transaction.
type Writer struct {
	store *db.Store
	bus   *events.Bus
}

func NewWriter(store *db.Store, bus *events.Bus) *Writer {
	return &Writer{store: store, bus: bus}
}

// InitializeSchema creates all tables if needed. Callers treat an error as
// fatal.
func (w *Writer) InitializeSchema(ctx context.Context) error {
	return w.store.EnsureSchema(ctx)
}

// Upsert replaces the index row for ref with title and body. contentHash is
// recorded for stale detection and may be empty.
func (w *Writer) Upsert(ctx context.Context, ref document.Ref, title, body, contentHash string) error {
	return w.upsert(ctx, ref, db.IndexEntry{DocID: ref.ID, Source: ref.Kind, Title: title, Body: body}, contentHash)
}

// UpsertPartial is Upsert for a body read from only the leading pages of ref.
// The row stays due for BackfillMissing and ReindexStale until a full read
// replaces it.
func (w *Writer) UpsertPartial(ctx context.Context, ref document.Ref, title, body, contentHash string) error {
	return w.upsert(ctx, ref, db.IndexEntry{
		DocID: ref.ID, Source: ref.Kind, Title: title, Body: body, Partial: true,
	}, contentHash)
}

func (w *Writer) upsert(ctx context.Context, ref document.Ref, entry db.IndexEntry, contentHash string) error {
	body := entry.Body
	err := w.store.WithTx(ctx, func(tx *sql.Tx) error {
		return db.UpsertIndexTx(ctx, tx, entry, contentHash)
	})
	if err != nil {
		metrics.DocumentsIndexed.WithLabelValues(string(ref.Kind), "failed").Inc()
		return fmt.Errorf("upsert %s: %w", ref, err)
	}

	result := "ok"
	if body == "" {
		result = "empty"
	}
	metrics.DocumentsIndexed.WithLabelValues(string(ref.Kind), result).Inc()
	log.Debug("indexed", "doc", ref.Key(), "chars", utf8.RuneCountInString(body), "partial", entry.Partial)

	w.bus.Emit(ctx, events.DocumentIndexed{Ref: ref, BodyChars: utf8.RuneCountInString(body)})
	return nil
}

// Delete removes ref from the index.
func (w *Writer) Delete(ctx context.Context, ref document.Ref) error {
	return w.store.WithTx(ctx, func(tx *sql.Tx) error {
		return db.DeleteIndexTx(ctx, tx, ref.ID, ref.Kind)
	})
}

// Cleanup removes index rows whose source row no longer exists.
func (w *Writer) Cleanup(ctx context.Context) (int64, error) {
	n, err := w.store.CleanupOrphans(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	if n > 0 {
		log.Info("removed orphaned index rows", "count", n)
	}
	return n, nil
}
