// Package server exposes the importer over HTTP. Uploaded tables are kept
// in memory and can be fetched as JSON, summarized, plotted or exported.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/KaramelBytes/tabimport/internal/importer"
	"github.com/KaramelBytes/tabimport/internal/logging"
)

// DefaultMaxUploadBytes caps request bodies when Config leaves it unset.
const DefaultMaxUploadBytes = 32 << 20

// Config holds server settings.
type Config struct {
	// Addr is the listen address; empty means ":http".
	Addr string
	// Options are the import defaults; query parameters override them per request.
	Options        importer.Options
	MaxUploadBytes int64
}

// Server is the HTTP import service.
type Server struct {
	cfg    Config
	store  *Store
	router *chi.Mux
	server *http.Server
}

// New creates a Server with an empty store.
func New(cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	s := &Server{
		cfg:    cfg,
		store:  NewStore(),
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/tables", func(r chi.Router) {
		r.Post("/", s.handleImport)
		r.Get("/", s.handleList)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/summary", s.handleSummary)
			r.Get("/plot.{format}", s.handlePlot)
			r.Get("/export/{format}", s.handleExport)
		})
	})
}

// Start listens on Config.Addr and serves until Shutdown, which makes it
// return http.ErrServerClosed.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.cfg.Addr, "max_upload_bytes", s.cfg.MaxUploadBytes)
	return s.server.ListenAndServe()
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	slog.Info("starting server", "addr", ln.Addr().String(), "max_upload_bytes", s.cfg.MaxUploadBytes)
	return s.server.Serve(ln)
}

// Shutdown gracefully stops the server. It is safe to call before or while
// Start runs; a later Start returns http.ErrServerClosed.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Store returns the table store.
func (s *Server) Store() *Store {
	return s.store
}

// writeError logs the error and writes a JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logging.FromContext(r.Context()).Warn("request failed", "status", status, "err", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, err.Error())
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "err", err)
	}
}
