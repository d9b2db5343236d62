package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/entities"
)

var (
	entitiesKind   string
	entitiesQuery  string
	entitiesLimit  int
	entitiesFormat string
)

func newEntitiesRebuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "entities-rebuild",
		Short: "Rebuild the people and organization registry from the index",
		Long: `Scan every indexed document for names of people and organizations and
replace the registry in one transaction. A failed rebuild leaves the previous
registry in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return withApp(ctx, func(a *app) error {
				stats, err := a.entities.Rebuild(ctx)
				if err != nil {
					return err
				}
				if !quiet {
					p.PrintListItem("Documents", p.FormatCount(stats.Documents))
					p.PrintListItem("Entities", p.FormatCount(stats.Entities))
					p.PrintListItem("Mentions", p.FormatCount(stats.Mentions))
				}
				return nil
			})
		},
	}
}

func newEntitiesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "Browse the entity registry",
	}
	cmd.AddCommand(newEntitiesListCommand())
	cmd.AddCommand(newEntitiesShowCommand())
	return cmd
}

func newEntitiesListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entities, most widely mentioned first",
		Example: `  dashboard entities list --kind person
  dashboard entities list -q sheriff -f yaml`,
		Args: cobra.NoArgs,
		RunE: runEntitiesList,
	}
	cmd.Flags().StringVarP(&entitiesKind, "kind", "k", "", "Filter by kind (person, org)")
	cmd.Flags().StringVarP(&entitiesQuery, "query", "Q", "", "Filter by name substring")
	cmd.Flags().IntVarP(&entitiesLimit, "limit", "l", 50, "Maximum number of entities (0 for all)")
	cmd.Flags().StringVarP(&entitiesFormat, "format", "f", formatTable, "Output format (table, json, yaml)")
	return cmd
}

func runEntitiesList(cmd *cobra.Command, args []string) error {
	if err := checkFormat(entitiesFormat); err != nil {
		return err
	}
	kind := entities.Kind(strings.ToLower(entitiesKind))
	if kind != "" && kind != entities.Person && kind != entities.Org {
		return fmt.Errorf("unknown entity kind %q (use person or org)", entitiesKind)
	}

	ctx := context.Background()
	return withApp(ctx, func(a *app) error {
		list, err := a.entities.Index(ctx, entities.IndexOptions{
			Kind: kind, Query: entitiesQuery, Limit: entitiesLimit,
		})
		if err != nil {
			return err
		}
		if list == nil {
			list = []entities.Entity{}
		}
		if done, err := writeStructured(cmd.OutOrStdout(), entitiesFormat, list); done {
			return err
		}

		if len(list) == 0 {
			if !quiet {
				p.PrintInfo("No entities; run \"dashboard entities-rebuild\" after indexing")
			}
			return nil
		}
		t := newTable(cmd.OutOrStdout(), table.Row{"ID", "Name", "Kind", "Documents", "Mentions", "Projects"})
		for _, e := range list {
			t.AppendRow(table.Row{e.ID, e.Name, e.Kind, e.DocCount, e.Occurrences, strings.Join(e.Projects, ", ")})
		}
		t.Render()
		return nil
	})
}

func newEntitiesShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an entity and the documents that mention it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(entitiesFormat); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entity id %q", args[0])
			}

			ctx := context.Background()
			return withApp(ctx, func(a *app) error {
				detail, err := a.entities.Get(ctx, id)
				if errors.Is(err, db.ErrNotFound) {
					return fmt.Errorf("no entity with id %d", id)
				}
				if err != nil {
					return err
				}
				if done, err := writeStructured(cmd.OutOrStdout(), entitiesFormat, detail); done {
					return err
				}

				p.PrintHeader(detail.Name)
				p.PrintListItem("Kind", string(detail.Kind))
				p.PrintListItem("Documents", fmt.Sprint(detail.DocCount))
				p.PrintListItem("Mentions", fmt.Sprint(detail.Occurrences))
				t := newTable(cmd.OutOrStdout(), table.Row{"Document", "Title", "Project", "Mentions"})
				for _, m := range detail.Mentions {
					t.AppendRow(table.Row{fmt.Sprintf("%s:%d", m.Source, m.DocID), m.Title, m.ProjectName, m.Occurrences})
				}
				t.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&entitiesFormat, "format", "f", formatTable, "Output format (table, json, yaml)")
	return cmd
}
