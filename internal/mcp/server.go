// Package mcp exposes record search and the entity registry to MCP clients.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/entities"
	"github.com/NewsNowIndy/Dashboard/internal/search"
)

// NewServer creates the dashboard MCP server.
func NewServer(store *db.Store, engine *search.Engine, ents *entities.Service, version string) *mcp.Server {
	logger := slog.New(slog.NewJSONHandler(
		os.Stderr,
		&slog.HandlerOptions{Level: slog.LevelInfo},
	))

	server := mcp.NewServer(
		&mcp.Implementation{Name: "dashboard", Version: version},
		&mcp.ServerOptions{Logger: logger},
	)

	handlers := NewHandlers(store, engine, ents)

	mcp.AddTool(server, newTool("search_documents", "Full-text search across project documents, FOIA attachments and media transcripts"),
		func(ctx context.Context, req *mcp.CallToolRequest, input SearchDocumentsInput) (*mcp.CallToolResult, any, error) {
			logger.Info("Tool call: search_documents", "query", input.Query)
			return handlers.SearchDocumentsHandler(ctx, req, input)
		})

	mcp.AddTool(server, newTool("list_entities", "List people and organizations named in indexed records"),
		func(ctx context.Context, req *mcp.CallToolRequest, input ListEntitiesInput) (*mcp.CallToolResult, any, error) {
			logger.Info("Tool call: list_entities", "kind", input.Kind, "query", input.Query)
			return handlers.ListEntitiesHandler(ctx, req, input)
		})

	mcp.AddTool(server, newTool("entity_detail", "Show every document that mentions an entity"),
		func(ctx context.Context, req *mcp.CallToolRequest, input EntityDetailInput) (*mcp.CallToolResult, any, error) {
			logger.Info("Tool call: entity_detail", "id", input.ID)
			return handlers.EntityDetailHandler(ctx, req, input)
		})

	mcp.AddTool(server, newTool("read_document", "Read the indexed text of one document"),
		func(ctx context.Context, req *mcp.CallToolRequest, input ReadDocumentInput) (*mcp.CallToolResult, any, error) {
			logger.Info("Tool call: read_document", "source", input.Source, "id", input.ID)
			return handlers.ReadDocumentHandler(ctx, req, input)
		})

	return server
}

// RunStdio runs the server using the stdio transport.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP runs the server using the streamable HTTP transport.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	f := func(r *http.Request) *mcp.Server { return server }
	handler := mcp.NewStreamableHTTPHandler(f, nil)

	s := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()

	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newTool(n, d string) *mcp.Tool {
	return &mcp.Tool{Name: n, Description: d}
}
