// Package api provides the HTTP API server and handlers for the Markwise application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markwiseapp/markwise-server/internal/http/response"
	"github.com/markwiseapp/markwise-server/internal/search"
	"github.com/markwiseapp/markwise-server/internal/service"
	"github.com/markwiseapp/markwise-server/internal/sse"
	"github.com/markwiseapp/markwise-server/internal/store"
)

// Services groups the business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Snapshot *service.SnapshotService
	Organize *service.OrganizeService
	Clean    *service.CleanService
	Tag      *service.TagService
	Import   *service.ImportService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      *store.Store
	services   Services
	search     *search.Indexer
	sseHandler *sse.Handler
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// search may be nil, which disables the search endpoints.
func NewServer(st *store.Store, services Services, searchIndexer *search.Indexer, sseManager *sse.Manager, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	humaConfig := huma.DefaultConfig("Markwise API", "1.0.0")
	RegisterErrorHandler()

	s := &Server{
		store:      st,
		services:   services,
		search:     searchIndexer,
		sseHandler: sse.NewHandler(sseManager, logger),
		router:     router,
		logger:     logger,
	}

	// chi requires all middleware to be attached before any route is
	// registered, and humachi.New registers huma's OpenAPI/docs routes.
	s.setupMiddleware()
	s.api = humachi.New(router, humaConfig)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// Browser extensions and local UIs call this API from arbitrary origins.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes. Typed operations register
// through huma; streaming and file-shaped endpoints stay plain chi.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.registerTreeRoutes()
	s.registerBookmarkRoutes()
	s.registerOrganizeRoutes()
	s.registerSnapshotRoutes()
	s.registerTagRoutes()
	s.registerCleanRoutes()
	if s.search != nil {
		s.registerSearchRoutes()
	}

	// Raw-body and streaming endpoints bypass huma.
	s.router.Post("/api/v1/import/html", s.handleImportHTML)
	s.router.Get("/api/v1/export/html", s.handleExportHTML)
	s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
