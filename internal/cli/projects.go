package cli

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/db"
)

var projectsFormat string

func newProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(projectsFormat); err != nil {
				return err
			}
			ctx := context.Background()
			return withApp(ctx, func(a *app) error {
				projects, err := a.store.ListProjects(ctx)
				if err != nil {
					return err
				}
				if projects == nil {
					projects = []db.Project{}
				}
				if done, err := writeStructured(cmd.OutOrStdout(), projectsFormat, projects); done {
					return err
				}
				if len(projects) == 0 {
					if !quiet {
						p.PrintInfo("No projects; create one with \"dashboard add project\"")
					}
					return nil
				}
				t := newTable(cmd.OutOrStdout(), table.Row{"Slug", "Name", "Status", "Created"})
				for _, pr := range projects {
					t.AppendRow(table.Row{pr.Slug, pr.Name, pr.Status, pr.CreatedAt})
				}
				t.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&projectsFormat, "format", "f", formatTable, "Output format (table, json, yaml)")
	return cmd
}
