package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/search"
	"github.com/NewsNowIndy/Dashboard/internal/shared"
)

var (
	searchLimit  int
	searchFormat string
	searchFirst  bool
)

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed documents",
		Long: `Search the full-text index across project documents, FOIA attachments
and media transcripts.

Every word must match. When nothing matches exactly the words are retried
as prefixes, so "India" finds "Indianapolis".`,
		Example: `  dashboard search "use of force"
  dashboard search -l 5 sheriff
  dashboard search -f json budget`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVarP(&searchLimit, "limit", "l", 20, "Maximum number of results")
	cmd.Flags().StringVarP(&searchFormat, "format", "f", formatTable, "Output format (table, json, yaml)")
	cmd.Flags().BoolVarP(&searchFirst, "first", "1", false, "Return only the top result")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := checkFormat(searchFormat); err != nil {
		return err
	}

	limit := searchLimit
	if searchFirst {
		limit = 1
	}

	ctx := context.Background()
	return withApp(ctx, func(a *app) error {
		resp, err := a.search.Query(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if limit > 0 && len(resp.Results) > limit {
			resp.Results = resp.Results[:limit]
		}
		if resp.Results == nil {
			resp.Results = []search.Result{}
		}

		if done, err := writeStructured(cmd.OutOrStdout(), searchFormat, resp); done {
			return err
		}
		return outputSearchTable(cmd, resp)
	})
}

func outputSearchTable(cmd *cobra.Command, resp search.Response) error {
	if len(resp.Results) == 0 {
		if !quiet {
			p.PrintError("No results found")
		}
		return nil
	}

	t := newTable(cmd.OutOrStdout(), table.Row{"Document", "Title", "Project", "Excerpt", "Score"})
	for _, r := range resp.Results {
		excerpt := shared.TruncateText(strings.Join(strings.Fields(shared.StripHighlight(r.Excerpt)), " "), 60)
		t.AppendRow(table.Row{fmt.Sprintf("%s:%d", r.Source, r.ID), r.Title, r.ProjectName, excerpt, fmt.Sprintf("%.4f", r.Score)})
	}
	t.Render()

	if resp.Phase == search.PhasePrefix && !quiet {
		p.PrintInfo("No exact matches; showing prefix matches")
	}
	return nil
}
