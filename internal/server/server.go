package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ubc/tlef-engeai-sub007/internal/artifact"
	"github.com/ubc/tlef-engeai-sub007/internal/confidence"
	"github.com/ubc/tlef-engeai-sub007/internal/db"
	"github.com/ubc/tlef-engeai-sub007/internal/diagrams"
	"github.com/ubc/tlef-engeai-sub007/internal/export"
	"github.com/ubc/tlef-engeai-sub007/internal/panel"
	"github.com/ubc/tlef-engeai-sub007/internal/pipeline"
)

// Config holds server configuration.
type Config struct {
	Port           int
	AllowAll       bool     // allow all CORS origins (dev mode)
	AllowedOrigins []string // used when AllowAll is false
}

// Server exposes the message pipeline and artifact registry over HTTP.
type Server struct {
	cfg        Config
	db         *db.DB
	registry   *artifact.Registry
	controller *panel.Controller
	pipeline   *pipeline.Renderer
	renderer   diagrams.Renderer
	exporter   *export.Exporter
	confidence *confidence.Store
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies. renderer may be nil when
// no diagram engine is installed; export endpoints then degrade to SVG.
// The controller drives the panel lifecycle behind the open, close and
// toggle routes; a nil controller falls back to bare registry flips.
func New(cfg Config, database *db.DB, registry *artifact.Registry, controller *panel.Controller, pipe *pipeline.Renderer, renderer diagrams.Renderer, exporter *export.Exporter, store *confidence.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:        cfg,
		db:         database,
		registry:   registry,
		controller: controller,
		pipeline:   pipe,
		renderer:   renderer,
		exporter:   exporter,
		confidence: store,
		logger:     logger,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/messages/render", s.handleRenderMessage)
		r.Get("/messages/stream", s.handleStream)

		r.Route("/artefacts", func(r chi.Router) {
			r.Get("/", s.handleListArtifacts)
			r.Get("/{id}", s.handleGetArtifact)
			r.Post("/{id}/open", s.handleOpenArtifact)
			r.Post("/{id}/close", s.handleCloseArtifact)
			r.Post("/{id}/toggle", s.handleToggleArtifact)
			r.Get("/{id}/export", s.handleExportArtifact)
		})

		r.Post("/confidence", s.handleConfidence)
	})

	return r
}

// Router returns the chi router, mostly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("engeai server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
