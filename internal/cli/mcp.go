package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/mcp"
)

func newMCPCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "mcp", Short: "Model Context Protocol server"}
	cmd.AddCommand(newMCPServeCommand())
	return cmd
}

func newMCPServeCommand() *cobra.Command {
	var stdio bool
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Expose search_documents, list_entities, entity_detail and read_document
to MCP clients over stdio (the default) or streamable HTTP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stdio && httpAddr == "" {
				stdio = true
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, func(a *app) error {
				server := mcp.NewServer(a.store, a.search, a.entities, Version)
				if httpAddr != "" {
					fmt.Fprintf(os.Stderr, "Starting MCP server on HTTP %s\n", httpAddr)
					return mcp.RunHTTP(ctx, server, httpAddr)
				}
				return mcp.RunStdio(ctx, server)
			})
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false, "Use stdio transport (default)")
	cmd.Flags().StringVar(&httpAddr, "http", "", "Use HTTP transport on the specified address (e.g., :8080)")
	cmd.MarkFlagsMutuallyExclusive("stdio", "http")
	return cmd
}
