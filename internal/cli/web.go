package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/web"
)

var webAddr string

func newWebCommand() *cobra.Command {
	webCmd := &cobra.Command{
		Use:   "web",
		Short: "Web interface commands",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the search web server",
		Long: `Serve the search page, entity registry, document pages, a JSON search
API at /api/search and Prometheus metrics at /metrics.`,
		Args: cobra.NoArgs,
		RunE: runWebServe,
	}

	serveCmd.Flags().StringVar(&webAddr, "http", "", "HTTP service address (default from config)")

	webCmd.AddCommand(serveCmd)
	return webCmd
}

func runWebServe(cmd *cobra.Command, args []string) error {
	addr := webAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withApp(ctx, func(a *app) error {
		if !quiet {
			p.PrintInfo("Serving on " + p.Styles.Link.Render("http://"+addr))
		}
		return web.NewServer(a.store, a.search, a.entities, addr).Start(ctx)
	})
}
