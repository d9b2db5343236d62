// Package extract turns a PDF on disk into plain text, falling back to OCR for
// scanned documents.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/NewsNowIndy/Dashboard/internal/cache"
	"github.com/NewsNowIndy/Dashboard/internal/metrics"
	"github.com/NewsNowIndy/Dashboard/internal/pdftext"
)

// DefaultMinChars is the stripped length below which direct text is treated
// as missing and OCR is attempted.
const DefaultMinChars = 20

// OCR reads text from page images.
type OCR interface {
	OCRText(ctx context.Context, path, lang string, maxPages int) (string, error)
}

// TextCache stores OCR output between runs.
type TextCache interface {
	GetText(key string) (string, bool, error)
	PutText(key, source, text string) error
}

// Options configures an Extractor.
type Options struct {
	Lang     string
	DPI      int // only used to key the text cache
	MaxPages int // 0 means all pages
	MinChars int
	Cache    TextCache
}

// Extractor implements the direct-then-OCR extraction policy.
type Extractor struct {
	direct func(path string) (string, error)
	pages  func(path string) (int, error)
	ocr    OCR
	opts   Options
}

// Result is extracted text. Truncated is set when OCR was capped by MaxPages
// and the document has more pages than were read.
type Result struct {
	Text      string
	Truncated bool
}

// New creates an Extractor. ocr may be nil, in which case only the text layer
// is read.
func New(ocr OCR, opts Options) *Extractor {
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultMinChars
	}
	if opts.Lang == "" {
		opts.Lang = "eng"
	}
	return &Extractor{direct: pdftext.PlainText, pages: pdftext.PageCount, ocr: ocr, opts: opts}
}

// WithDirect replaces the text-layer reader. Used by tests.
func (e *Extractor) WithDirect(fn func(path string) (string, error)) *Extractor {
	e.direct = fn
	return e
}

// WithPageCounter replaces the page counter. Used by tests.
func (e *Extractor) WithPageCounter(fn func(path string) (int, error)) *Extractor {
	e.pages = fn
	return e
}

// WithMaxPages returns a copy of e that rasterizes at most n pages.
func (e *Extractor) WithMaxPages(n int) *Extractor {
	cp := *e
	cp.opts.MaxPages = n
	return &cp
}

// WithoutCacheReads returns a copy of e that recomputes OCR text but still
// refreshes the cache.
func (e *Extractor) WithoutCacheReads() *Extractor {
	cp := *e
	if e.opts.Cache != nil {
		cp.opts.Cache = writeOnly{e.opts.Cache}
	}
	return &cp
}

// Extract returns the best text for the PDF at path. It never fails: any error
// is logged and yields the best text obtained so far, possibly empty.
func (e *Extractor) Extract(ctx context.Context, path string) string {
	return e.ExtractResult(ctx, path).Text
}

// ExtractResult is Extract that also reports whether a page cap cut the OCR
// short.
func (e *Extractor) ExtractResult(ctx context.Context, path string) Result {
	start := time.Now()

	text, err := e.readDirect(path)
	if err != nil {
		log.Debug("direct text extraction failed", "path", path, "err", err)
	}
	if pdftext.StrippedLen(text) >= e.opts.MinChars || e.ocr == nil {
		metrics.ExtractionDuration.WithLabelValues("direct").Observe(time.Since(start).Seconds())
		return Result{Text: text}
	}

	ocrText := e.ocrText(ctx, path)
	metrics.ExtractionDuration.WithLabelValues("ocr").Observe(time.Since(start).Seconds())

	res := Result{Text: text, Truncated: e.capped(path)}
	if pdftext.StrippedLen(ocrText) > pdftext.StrippedLen(text) {
		res.Text = ocrText
	}
	return res
}

// capped reports whether the page cap hides pages of path. An unreadable page
// count counts as capped.
func (e *Extractor) capped(path string) bool {
	if e.opts.MaxPages <= 0 {
		return false
	}
	n, err := e.countPages(path)
	if err != nil {
		log.Debug("page count failed", "path", path, "err", err)
		return true
	}
	return n > e.opts.MaxPages
}

func (e *Extractor) countPages(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("page count panicked: %v", r)
		}
	}()
	return e.pages(path)
}

func (e *Extractor) readDirect(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("text extractor panicked", "path", path, "panic", r)
			text, err = "", nil
		}
	}()
	return e.direct(path)
}

func (e *Extractor) ocrText(ctx context.Context, path string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("ocr panicked", "path", path, "panic", r)
			text = ""
		}
	}()

	key := e.cacheKey(path)
	if key != "" {
		cached, ok, err := e.opts.Cache.GetText(key)
		if err != nil {
			log.Debug("ocr text cache read failed", "key", key, "err", err)
		}
		if ok {
			return cached
		}
	}

	text, err := e.ocr.OCRText(ctx, path, e.opts.Lang, e.opts.MaxPages)
	if err != nil {
		log.Info("ocr fallback failed", "path", path, "err", err)
		return ""
	}

	if key != "" && text != "" {
		if err := e.opts.Cache.PutText(key, path, text); err != nil {
			log.Debug("ocr text cache write failed", "key", key, "err", err)
		}
	}
	return text
}

func (e *Extractor) cacheKey(path string) string {
	if e.opts.Cache == nil {
		return ""
	}
	sum, err := FileHash(path)
	if err != nil {
		return ""
	}
	return cache.TextKey(sum, e.opts.Lang, e.opts.DPI, e.opts.MaxPages)
}

// FileHash returns the hex SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type writeOnly struct {
	TextCache
}

func (w writeOnly) GetText(string) (string, bool, error) {
	return "", false, nil
}
