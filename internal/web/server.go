package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NewsNowIndy/Dashboard/internal/assets"
	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/entities"
	"github.com/NewsNowIndy/Dashboard/internal/search"
)

// Server serves the search, entity and document pages.
type Server struct {
	store    *db.Store
	search   *search.Engine
	entities *entities.Service
	notes    *MarkdownRenderer
	router   *http.ServeMux
	addr     string
}

// NewServer wires the read side of the dashboard into an HTTP router.
func NewServer(store *db.Store, engine *search.Engine, ents *entities.Service, addr string) *Server {
	s := &Server{
		store:    store,
		search:   engine,
		entities: ents,
		notes:    NewMarkdownRenderer(),
		router:   http.NewServeMux(),
		addr:     addr,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("GET /search", s.handleSearch)
	s.router.HandleFunc("GET /api/search", s.handleAPISearch)
	s.router.HandleFunc("GET /entities", s.handleEntities)
	s.router.HandleFunc("GET /entities/{id}", s.handleEntity)
	s.router.HandleFunc("GET /documents/{source}/{id}", s.handleDocument)
	s.router.Handle("GET /metrics", promhttp.Handler())
	s.router.Handle("GET /static/", http.FileServer(http.FS(assets.StaticFS)))
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("web interface listening", "url", "http://"+s.addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
