package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/NewsNowIndy/Dashboard/internal/cache"
	"github.com/NewsNowIndy/Dashboard/internal/document"
)

// OCRSummary reports what an OCR pass changed.
type OCRSummary struct {
	RunID       string
	Projects    int // project PDFs rewritten in place
	Attachments int // attachments given a searchable cached copy
	Failed      int
}

// OCRBackfill gives image-only PDFs a text layer. Project documents are
// rewritten in place through an atomic rename; attachments get a searchable
// copy in the OCR cache, recorded as ocr_pdf_path. Each changed document is
// re-indexed from its new file, as is every project document that shares a
// stored file rewritten earlier in the pass.
func (o *Orchestrator) OCRBackfill(ctx context.Context) (OCRSummary, error) {
	if o.ocr == nil || o.cache == nil {
		return OCRSummary{}, errors.New("ocr backfill needs an OCR engine and a cache")
	}

	lock, err := acquireLock(o.opts.LockPath)
	if err != nil {
		return OCRSummary{}, err
	}
	defer lock.Release()

	refs, err := o.store.ListRefs(ctx, document.Project, document.Attachment)
	if err != nil {
		return OCRSummary{}, err
	}

	// Uploads are content addressed, so several rows can point at one file.
	rewritten := make(map[string]bool)

	var sum OCRSummary
	if sum.RunID, err = o.store.StartRun(ctx, RunOCR); err != nil {
		return OCRSummary{}, err
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if !ref.Indexable() {
			continue
		}

		var changed bool
		var err error
		switch ref.Kind {
		case document.Project:
			if rewritten[ref.StoredPath] {
				changed = true
				break
			}
			changed, err = o.ocrProjectDocument(ctx, ref)
			if changed {
				rewritten[ref.StoredPath] = true
				sum.Projects++
			}
		case document.Attachment:
			if ref.OCRPath != "" {
				continue
			}
			var ocrPath string
			ocrPath, err = o.ocrAttachment(ctx, ref)
			if ocrPath != "" {
				ref.OCRPath = ocrPath
				changed = true
				sum.Attachments++
			}
		}
		if err != nil {
			sum.Failed++
			log.Warn("ocr pass failed", "doc", ref.Key(), "err", err)
			continue
		}

		if changed {
			if _, err := o.process(ctx, ref, o.extractor); err != nil {
				log.Warn("reindex after ocr failed", "doc", ref.Key(), "err", err)
			}
		}
	}

	processed := sum.Projects + sum.Attachments + sum.Failed
	if err := o.store.FinishRun(ctx, sum.RunID, processed, sum.Projects+sum.Attachments, sum.Failed); err != nil {
		log.Warn("could not record run", "run", sum.RunID, "err", err)
	}
	log.Info("ocr pass finished", "projects", sum.Projects, "attachments", sum.Attachments, "failed", sum.Failed)
	return sum, nil
}

func (o *Orchestrator) ocrProjectDocument(ctx context.Context, ref document.Ref) (bool, error) {
	if ref.StoredPath == "" {
		return false, errors.New("no stored path")
	}
	if o.hasText(ref.StoredPath) {
		return false, nil
	}

	tmp := ref.StoredPath + ".ocr.tmp.pdf"
	defer os.Remove(tmp)

	if !o.ocr.MakeSearchable(ctx, ref.StoredPath, tmp, o.opts.Lang) {
		return false, fmt.Errorf("no searchable output for %s", ref.StoredPath)
	}
	if err := os.Rename(tmp, ref.StoredPath); err != nil {
		return false, fmt.Errorf("replace with searchable copy: %w", err)
	}
	return true, nil
}

func (o *Orchestrator) ocrAttachment(ctx context.Context, ref document.Ref) (string, error) {
	mat, err := o.resolver.Open(ref)
	if err != nil {
		return "", err
	}
	defer mat.Close()

	out, err := os.CreateTemp(o.cache.Dir(), ".ocr_out_*.pdf")
	if err != nil {
		return "", err
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	if !o.ocr.MakeSearchable(ctx, mat.Path, outPath, o.opts.Lang) {
		return "", fmt.Errorf("no searchable output for %s", ref)
	}

	key := cache.AttachmentKey(ref.ID)
	if _, err := o.cache.PutFile(key, ref.Key(), outPath); err != nil {
		return "", fmt.Errorf("store searchable copy: %w", err)
	}
	cached, _, err := o.cache.Get(key)
	if err != nil {
		return "", err
	}
	if err := o.store.SetAttachmentOCRPath(ctx, ref.ID, cached); err != nil {
		return "", err
	}
	return filepath.Clean(cached), nil
}
