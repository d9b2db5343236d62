package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/index"
)

func newReindexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex-fts",
		Short: "Rebuild the full-text index from every source document",
		Long: `Re-extract and re-index every eligible project document, attachment and
media transcript. Cached OCR text is ignored so changed OCR settings take
effect. Running it twice leaves the index unchanged.`,
		Args: cobra.NoArgs,
		RunE: batchCommand(func(ctx context.Context, a *app) (index.Summary, error) {
			return a.indexer.ReindexAll(ctx)
		}),
	}
}

func newBackfillCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Index eligible documents that have no index entry",
		Args:  cobra.NoArgs,
		RunE: batchCommand(func(ctx context.Context, a *app) (index.Summary, error) {
			return a.indexer.BackfillMissing(ctx)
		}),
	}
}

func newReindexStaleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex-stale",
		Short: "Re-index documents whose stored file changed since indexing",
		Args:  cobra.NoArgs,
		RunE: batchCommand(func(ctx context.Context, a *app) (index.Summary, error) {
			return a.indexer.ReindexStale(ctx)
		}),
	}
}

// batchCommand adapts an orchestrator pass into a RunE that stops cleanly on
// interrupt and prints the run summary.
func batchCommand(run func(ctx context.Context, a *app) (index.Summary, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withApp(ctx, func(a *app) error {
			sum, err := run(ctx, a)
			if !quiet && sum.RunID != "" {
				printSummary(sum)
			}
			return err
		})
	}
}

func printSummary(sum index.Summary) {
	p.PrintListItem("Run", p.FormatID(sum.RunID))
	p.PrintListItem("Processed", p.FormatCount(sum.Processed))
	p.PrintListItem("Non-empty", p.FormatCount(sum.NonEmpty))
	p.PrintListItem("Failed", p.FormatCount(sum.Failed))
	p.PrintListItem("Skipped", p.FormatCount(sum.Skipped))
	if sum.Failed > 0 {
		p.PrintWarning(fmt.Sprintf("%d documents failed; rerun with --verbose for details", sum.Failed))
	}
}

var cleanupVacuum bool

func newCleanupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove index entries whose source document is gone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return withApp(ctx, func(a *app) error {
				n, err := a.writer.Cleanup(ctx)
				if err != nil {
					return err
				}
				if !quiet {
					p.PrintSuccess(fmt.Sprintf("Removed %d orphaned index entries", n))
				}
				if !cleanupVacuum {
					return nil
				}
				if err := a.store.Vacuum(ctx); err != nil {
					return fmt.Errorf("vacuum: %w", err)
				}
				if !quiet {
					p.PrintSuccess("Database compacted")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&cleanupVacuum, "vacuum", false, "Compact the database afterwards")
	return cmd
}

func newUnindexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unindex <source> <id>",
		Short: "Remove one document from the full-text index",
		Long: `Remove a document's index entry without touching the stored file or its
row. The next backfill indexes it again.`,
		Example: `  dashboard unindex attachment 12`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := document.ParseKind(args[0])
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[1])
			}

			ctx := context.Background()
			return withApp(ctx, func(a *app) error {
				ref := document.Ref{Kind: kind, ID: id}
				if err := a.writer.Delete(ctx, ref); err != nil {
					return err
				}
				if !quiet {
					p.PrintSuccess(fmt.Sprintf("Removed %s from the index", p.FormatID(ref.Key())))
				}
				return nil
			})
		},
	}
}

func newOCRBackfillCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ocr-backfill",
		Short: "Give scanned PDFs a text layer and re-index them",
		Long: `Run OCR over image-only PDFs. Project documents are rewritten in place;
attachments get a searchable copy in the OCR cache so the encrypted original
is never replaced. Every changed document is re-indexed.

Requires ocrmypdf, or pdftoppm and tesseract, on PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, func(a *app) error {
				sum, err := a.indexer.OCRBackfill(ctx)
				if !quiet && sum.RunID != "" {
					p.PrintListItem("Run", p.FormatID(sum.RunID))
					p.PrintListItem("Project documents", p.FormatCount(sum.Projects))
					p.PrintListItem("Attachments", p.FormatCount(sum.Attachments))
					p.PrintListItem("Failed", p.FormatCount(sum.Failed))
				}
				return err
			})
		},
	}
}
