package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"orgscan/internal/config"
	"orgscan/internal/jobs"
	"orgscan/internal/logging"
	"orgscan/internal/worker"
)

// Server exposes the document API over HTTP.
type Server struct {
	cfg        *config.Config
	store      *jobs.Store
	dispatcher worker.Dispatcher
	logger     *slog.Logger
	httpServer *http.Server
}

// New wires the API server. The dispatcher decides whether accepted uploads
// run inline or on a worker pool.
func New(cfg *config.Config, store *jobs.Store, dispatcher worker.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		cfg:        cfg,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Paths.APIBind,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the route table. Exposed so tests can drive handlers without
// binding a socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/api/documents/upload", s.handleUpload)
	r.Get("/api/documents", s.handleList)
	r.Get("/api/documents/status/{jobID}", s.handleStatus)
	return r
}

// Start serves until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("api server listening", logging.String("bind", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
