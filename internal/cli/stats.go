package cli

import (
	"context"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/document"
)

var statsRuns int

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index coverage and recent runs",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	cmd.Flags().IntVarP(&statsRuns, "runs", "n", 10, "Number of recent runs to show")
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	return withApp(ctx, func(a *app) error {
		counts, err := a.store.Counts(ctx)
		if err != nil {
			return err
		}

		p.PrintListItem("Database", p.FormatPath(cfg.Database.Path))
		t := newTable(cmd.OutOrStdout(), table.Row{"Source", "Documents", "Indexed"})
		var docs, indexed int
		for _, k := range document.Kinds {
			t.AppendRow(table.Row{string(k), counts.Documents[k], counts.Indexed[k]})
			docs += counts.Documents[k]
			indexed += counts.Indexed[k]
		}
		t.AppendFooter(table.Row{"total", docs, indexed})
		t.Render()

		p.PrintListItem("Entities", p.FormatCount(counts.Entities))
		p.PrintListItem("Mentions", p.FormatCount(counts.Mentions))

		runs, err := a.store.RecentRuns(ctx, statsRuns)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return nil
		}

		rt := newTable(cmd.OutOrStdout(), table.Row{"Run", "Kind", "Started", "Duration", "Processed", "Non-empty", "Failed"})
		for _, r := range runs {
			dur := "running"
			if !r.FinishedAt.IsZero() {
				dur = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
			}
			rt.AppendRow(table.Row{
				r.ID[:8], r.Kind, r.StartedAt.Local().Format("2006-01-02 15:04"), dur,
				r.Processed, r.NonEmpty, r.Failed,
			})
		}
		rt.Render()
		return nil
	})
}
