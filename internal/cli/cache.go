package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/cache"
)

var (
	cachePruneAge int
	cacheList     bool
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the OCR cache",
		Long: `Manage the local OCR cache.

The cache holds searchable copies of scanned attachments and compressed OCR
text keyed by content hash, language, resolution and page cap, so unchanged
scans are never OCR'd twice.`,
	}

	cmd.AddCommand(newCacheInfoCommand())
	cmd.AddCommand(newCachePruneCommand())
	cmd.AddCommand(newCacheClearCommand())
	return cmd
}

func openCache() (*cache.FilesystemCache, error) {
	return cache.New(cfg.Storage.OCRCacheDir)
}

func newCacheInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE:  runCacheInfo,
	}
	cmd.Flags().BoolVar(&cacheList, "list", false, "List every cached entry")
	return cmd
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}

	entries := c.List("")
	pdfs, texts := len(c.List("ocr/")), len(c.List("text/"))

	p.PrintListItem("Cache Directory", p.FormatPath(c.Dir()))
	p.PrintListItem("Total Size", formatBytes(c.Size()))
	p.PrintListItem("Searchable PDFs", fmt.Sprint(pdfs))
	p.PrintListItem("OCR Text", fmt.Sprint(texts))

	if !cacheList || len(entries) == 0 {
		return nil
	}
	t := newTable(cmd.OutOrStdout(), table.Row{"Key", "Source", "Size", "Age"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Key, e.Source, formatBytes(e.Size), formatDuration(time.Since(e.StoredAt))})
	}
	t.Render()
	return nil
}

func newCachePruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove cache entries whose file is gone or that are older than --age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}

			maxAge := time.Duration(0)
			if cachePruneAge > 0 {
				maxAge = time.Duration(cachePruneAge) * 24 * time.Hour
			}

			count, err := c.Prune(maxAge)
			if err != nil {
				return err
			}
			if !quiet {
				p.PrintSuccess(fmt.Sprintf("Pruned %d cache entries", count))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&cachePruneAge, "age", 0, "Prune entries older than N days")
	return cmd
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cache entries",
		Long: `Remove every cached entry. Attachments whose ocr_pdf_path pointed into
the cache fall back to their encrypted original until the next ocr-backfill.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return err
			}
			if !quiet {
				p.PrintSuccess("Cache cleared")
			}
			return nil
		},
	}
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
	return fmt.Sprintf("%d days", int(d.Hours()/24))
}
