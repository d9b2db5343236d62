// Package ocr gives image-only PDFs a text layer and reads text out of page
// images. It drives ocrmypdf, pdftoppm and tesseract as subprocesses.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/NewsNowIndy/Dashboard/internal/metrics"
	"github.com/NewsNowIndy/Dashboard/internal/pdftext"
)

// Config names the external tools and rasterization settings.
type Config struct {
	OCRmyPDF      string // binary name or path; empty -> "ocrmypdf"
	Tesseract     string // empty -> "tesseract"
	Pdftoppm      string // empty -> "pdftoppm"
	Lang          string // default "eng"
	DPI           int    // default 300
	OptimizeLevel int    // ocrmypdf --optimize level, 0 disables
	TempDir       string // parent for per-call scratch dirs
}

// Engine implements both OCR strategies.
type Engine struct {
	cfg     Config
	runner  Runner
	hasText func(path string) bool
	merge   func(inputs []string, out string) error
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithTextProbe replaces the check for an existing text layer.
func WithTextProbe(fn func(path string) bool) Option {
	return func(e *Engine) { e.hasText = fn }
}

// WithMerger replaces the per-page PDF merge step.
func WithMerger(fn func(inputs []string, out string) error) Option {
	return func(e *Engine) { e.merge = fn }
}

// New creates an Engine with defaults filled in.
func New(cfg Config, opts ...Option) *Engine {
	if cfg.OCRmyPDF == "" {
		cfg.OCRmyPDF = "ocrmypdf"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}

	e := &Engine{
		cfg:     cfg,
		runner:  ExecRunner{},
		hasText: pdftext.HasText,
		merge:   pdftext.Merge,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lang returns the default OCR language.
func (e *Engine) Lang() string {
	return e.cfg.Lang
}

// DPI returns the rasterization resolution.
func (e *Engine) DPI() int {
	return e.cfg.DPI
}

// MakeSearchable writes a searchable version of in to out. A PDF that already
// has a text layer is copied verbatim. Otherwise ocrmypdf is tried first and
// rasterize-then-tesseract second. It reports false when every strategy
// failed, in which case callers keep using the original file.
func (e *Engine) MakeSearchable(ctx context.Context, in, out, lang string) bool {
	if lang == "" {
		lang = e.cfg.Lang
	}

	if e.hasText(in) {
		if err := copyFile(in, out); err == nil {
			metrics.OCRRuns.WithLabelValues("copy", "ok").Inc()
			log.Debug("pdf already searchable, copied", "in", in, "out", out)
			return true
		} else {
			log.Warn("copy of searchable pdf failed", "in", in, "err", err)
		}
	}

	if err := e.ocrmypdf(ctx, in, out, lang); err == nil {
		metrics.OCRRuns.WithLabelValues("ocrmypdf", "ok").Inc()
		return true
	} else {
		metrics.OCRRuns.WithLabelValues("ocrmypdf", "failed").Inc()
		log.Info("ocrmypdf unavailable or failed, rasterizing", "in", in, "err", err)
	}

	if err := e.rasterToPDF(ctx, in, out, lang); err != nil {
		metrics.OCRRuns.WithLabelValues("raster", "failed").Inc()
		log.Warn("ocr failed", "in", in, "err", err)
		_ = os.Remove(out)
		return false
	}
	metrics.OCRRuns.WithLabelValues("raster", "ok").Inc()
	return true
}

func (e *Engine) ocrmypdf(ctx context.Context, in, out, lang string) error {
	args := []string{"-l", lang, "--skip-text"}
	if e.cfg.OptimizeLevel > 0 {
		args = append(args, "--optimize", strconv.Itoa(e.cfg.OptimizeLevel))
	}
	args = append(args, in, out)

	if _, stderr, err := e.runner.Run(ctx, e.cfg.OCRmyPDF, args...); err != nil {
		_ = os.Remove(out)
		return fmt.Errorf("ocrmypdf: %w: %s", err, truncate(strings.TrimSpace(string(stderr)), 512))
	}
	if !nonEmptyFile(out) {
		return errors.New("ocrmypdf produced no output")
	}
	return nil
}

func (e *Engine) rasterToPDF(ctx context.Context, in, out, lang string) error {
	dir, err := os.MkdirTemp(e.cfg.TempDir, "dashboard-ocr-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	images, err := e.rasterize(ctx, in, dir, 0)
	if err != nil {
		return err
	}

	pages := make([]string, 0, len(images))
	for i, img := range images {
		base := strings.TrimSuffix(img, filepath.Ext(img))
		// tesseract <img> <base> -l <lang> pdf writes <base>.pdf
		if _, stderr, err := e.runner.Run(ctx, e.cfg.Tesseract, img, base, "-l", lang, "pdf"); err != nil {
			return fmt.Errorf("tesseract page %d: %w: %s", i+1, err, truncate(strings.TrimSpace(string(stderr)), 512))
		}
		if !nonEmptyFile(base + ".pdf") {
			return fmt.Errorf("tesseract page %d produced no pdf", i+1)
		}
		pages = append(pages, base+".pdf")
	}

	merged := filepath.Join(dir, "merged.pdf")
	if err := e.merge(pages, merged); err != nil {
		return fmt.Errorf("merge pages: %w", err)
	}
	if e.cfg.OptimizeLevel > 0 {
		optimized := filepath.Join(dir, "optimized.pdf")
		if err := pdftext.Optimize(merged, optimized); err != nil {
			log.Debug("optimize merged pdf failed, keeping unoptimized", "err", err)
		} else {
			merged = optimized
		}
	}
	return copyFile(merged, out)
}

// OCRText rasterizes in and returns the recognized text of each page joined by
// newlines. maxPages > 0 bounds how many pages are rendered. Pages tesseract
// cannot read are skipped.
func (e *Engine) OCRText(ctx context.Context, in, lang string, maxPages int) (string, error) {
	if lang == "" {
		lang = e.cfg.Lang
	}

	dir, err := os.MkdirTemp(e.cfg.TempDir, "dashboard-ocrtext-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	images, err := e.rasterize(ctx, in, dir, maxPages)
	if err != nil {
		metrics.OCRRuns.WithLabelValues("text", "failed").Inc()
		return "", err
	}

	parts := make([]string, 0, len(images))
	for i, img := range images {
		stdout, _, err := e.runner.Run(ctx, e.cfg.Tesseract, img, "stdout", "-l", lang)
		if err != nil {
			log.Debug("skipping unreadable page", "in", in, "page", i+1, "err", err)
			continue
		}
		if txt := string(stdout); txt != "" {
			parts = append(parts, txt)
		}
	}

	metrics.OCRRuns.WithLabelValues("text", "ok").Inc()
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// rasterize renders pages of in as PNGs inside dir and returns their paths in
// page order.
func (e *Engine) rasterize(ctx context.Context, in, dir string, maxPages int) ([]string, error) {
	prefix := filepath.Join(dir, "page")
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(maxPages))
	}
	args = append(args, in, prefix)

	if _, stderr, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(strings.TrimSpace(string(stderr)), 512))
	}

	// pdftoppm zero-pads page numbers to a common width, so lexical order is
	// page order.
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if maxPages > 0 && len(matches) > maxPages {
		matches = matches[:maxPages]
	}
	if len(matches) == 0 {
		return nil, errors.New("pdftoppm rendered no pages")
	}
	return matches, nil
}

func nonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
