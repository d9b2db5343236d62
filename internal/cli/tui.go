package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/tui"
)

func newTuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the terminal user interface",
		Long:  `Launch the interactive terminal browser: search, pick a result, read it in a tab.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(context.Background(), func(a *app) error {
				return tui.Run(tui.NewStoreBackend(a.store, a.search))
			})
		},
	}
}
