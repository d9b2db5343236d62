package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/NewsNowIndy/Dashboard/internal/cache"
	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/events"
	"github.com/NewsNowIndy/Dashboard/internal/extract"
	"github.com/NewsNowIndy/Dashboard/internal/pdftext"
)

// Run kinds recorded in index_runs.
const (
	RunBackfill = "backfill"
	RunReindex  = "reindex"
	RunStale    = "reindex-stale"
	RunOCR      = "ocr-backfill"
)

// Summary reports the outcome of a batch run.
type Summary struct {
	RunID     string
	Processed int // eligible documents attempted
	NonEmpty  int // documents indexed with non-empty text
	Failed    int // documents that could not be read or written
	Skipped   int // ineligible documents
}

func (s Summary) String() string {
	return fmt.Sprintf("processed=%d non_empty=%d failed=%d skipped=%d", s.Processed, s.NonEmpty, s.Failed, s.Skipped)
}

// Searchable adds a text layer to a PDF.
type Searchable interface {
	MakeSearchable(ctx context.Context, in, out, lang string) bool
}

// Options tunes an Orchestrator.
type Options struct {
	Workers       int           // parallel extractions; writes stay serialized
	UploadTimeout time.Duration // budget for IndexOne
	UploadPages   int           // OCR page cap for IndexOne
	Lang          string
	LockPath      string // empty disables the cross-process lock
}

// Orchestrator runs backfill, reindex and OCR passes over all sources.
type Orchestrator struct {
	store     *db.Store
	writer    *Writer
	extractor *extract.Extractor
	resolver  *document.Resolver
	ocr       Searchable
	cache     *cache.FilesystemCache
	bus       *events.Bus
	opts      Options

	hasText func(path string) bool
	writeMu sync.Mutex
}

// NewOrchestrator wires the pipeline. ocr and c may be nil, which disables
// OCRBackfill.
func NewOrchestrator(store *db.Store, writer *Writer, extractor *extract.Extractor, resolver *document.Resolver,
	ocr Searchable, c *cache.FilesystemCache, bus *events.Bus, opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Lang == "" {
		opts.Lang = "eng"
	}
	return &Orchestrator{
		store:     store,
		writer:    writer,
		extractor: extractor,
		resolver:  resolver,
		ocr:       ocr,
		cache:     c,
		bus:       bus,
		opts:      opts,
		hasText:   pdftext.HasText,
	}
}

// BackfillMissing indexes eligible documents that have no index row yet.
func (o *Orchestrator) BackfillMissing(ctx context.Context) (Summary, error) {
	return o.batch(ctx, RunBackfill, func(ctx context.Context) ([]document.Ref, error) {
		return o.store.MissingRefs(ctx)
	}, o.extractor)
}

// ReindexAll re-extracts every eligible document, bypassing cached OCR text.
func (o *Orchestrator) ReindexAll(ctx context.Context) (Summary, error) {
	return o.batch(ctx, RunReindex, func(ctx context.Context) ([]document.Ref, error) {
		return o.store.ListRefs(ctx)
	}, o.extractor.WithoutCacheReads())
}

// ReindexStale re-extracts documents whose source content changed since they
// were indexed, plus any that were never indexed or only partially read.
func (o *Orchestrator) ReindexStale(ctx context.Context) (Summary, error) {
	return o.batch(ctx, RunStale, func(ctx context.Context) ([]document.Ref, error) {
		refs, err := o.store.ListRefs(ctx)
		if err != nil {
			return nil, err
		}
		states, err := o.store.IndexStates(ctx)
		if err != nil {
			return nil, err
		}

		var stale []document.Ref
		for _, ref := range refs {
			if !ref.Indexable() {
				stale = append(stale, ref) // counted as skipped
				continue
			}
			st, ok := states[ref.Key()]
			if !ok || st.Partial {
				stale = append(stale, ref)
				continue
			}
			hash, err := sourceHash(ref)
			if err != nil || hash != st.ContentHash {
				stale = append(stale, ref)
			}
		}
		return stale, nil
	}, o.extractor)
}

// IndexOne indexes a single document within the upload budget. It is used by
// the ingest path and never takes the batch lock. A read cut short by the page
// cap is stored as partial so the next batch pass indexes the whole document.
func (o *Orchestrator) IndexOne(ctx context.Context, ref document.Ref) error {
	if !ref.Indexable() {
		log.Debug("not indexable, skipping", "doc", ref.Key())
		return nil
	}
	if o.opts.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.UploadTimeout)
		defer cancel()
	}
	ex := o.extractor
	if o.opts.UploadPages > 0 {
		ex = ex.WithMaxPages(o.opts.UploadPages)
	}
	_, err := o.process(ctx, ref, ex)
	return err
}

type refLister func(ctx context.Context) ([]document.Ref, error)

func (o *Orchestrator) batch(ctx context.Context, kind string, list refLister, ex *extract.Extractor) (Summary, error) {
	lock, err := acquireLock(o.opts.LockPath)
	if err != nil {
		return Summary{}, err
	}
	defer lock.Release()

	refs, err := list(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: list documents: %w", kind, err)
	}

	var sum Summary
	if sum.RunID, err = o.store.StartRun(ctx, kind); err != nil {
		return Summary{}, err
	}
	log.Info("index run started", "kind", kind, "run", sum.RunID, "candidates", len(refs))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)

	for _, ref := range refs {
		if !ref.Indexable() {
			sum.Skipped++
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			nonEmpty, err := o.process(gctx, ref, ex)

			mu.Lock()
			defer mu.Unlock()
			sum.Processed++
			switch {
			case err != nil:
				sum.Failed++
				log.Warn("index failed", "doc", ref.Key(), "err", err)
			case nonEmpty:
				sum.NonEmpty++
			}
			return nil
		})
	}
	runErr := g.Wait()

	if err := o.store.FinishRun(ctx, sum.RunID, sum.Processed, sum.NonEmpty, sum.Failed); err != nil {
		log.Warn("could not record run", "run", sum.RunID, "err", err)
	}
	log.Info("index run finished", "kind", kind, "run", sum.RunID, "summary", sum.String())
	o.bus.Emit(ctx, events.BackfillCompleted{
		RunID: sum.RunID, Kind: kind, Processed: sum.Processed, NonEmpty: sum.NonEmpty, Failed: sum.Failed,
	})

	if runErr != nil {
		return sum, fmt.Errorf("%s interrupted: %w", kind, runErr)
	}
	return sum, nil
}

// process extracts and upserts one document. It reports whether the indexed
// body is non-empty.
func (o *Orchestrator) process(ctx context.Context, ref document.Ref, ex *extract.Extractor) (bool, error) {
	hash, err := sourceHash(ref)
	if err != nil {
		return false, err
	}

	mat, err := o.resolver.Open(ref)
	if err != nil {
		return false, err
	}
	defer mat.Close()

	res := extract.Result{Text: mat.Text}
	if !mat.Inline() {
		res = ex.ExtractResult(ctx, mat.Path)
	}
	body := res.Text

	upsert := o.writer.Upsert
	if res.Truncated {
		upsert = o.writer.UpsertPartial
	}
	o.writeMu.Lock()
	err = upsert(ctx, ref, ref.DisplayTitle(), body, hash)
	o.writeMu.Unlock()
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(body) != "", nil
}

// sourceHash fingerprints the stored content behind ref: the transcript for
// media, otherwise the file that indexing reads (the OCR copy when present).
func sourceHash(ref document.Ref) (string, error) {
	if ref.Kind == document.Media {
		sum := sha256.Sum256([]byte(ref.Transcript))
		return hex.EncodeToString(sum[:]), nil
	}
	path := ref.StoredPath
	if ref.OCRPath != "" {
		if _, err := os.Stat(ref.OCRPath); err == nil {
			path = ref.OCRPath
		}
	}
	if path == "" {
		return "", errors.New("no stored path")
	}
	return extract.FileHash(path)
}
