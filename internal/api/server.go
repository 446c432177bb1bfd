// Package api serves the relaxation pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz            build info and status
//	GET    /metrics            Prometheus exposition (when metrics are enabled)
//	POST   /v1/layouts         relax the XML request body, store and return the snapshot
//	GET    /v1/layouts         list stored snapshots
//	GET    /v1/layouts/{id}    fetch a stored snapshot
//	DELETE /v1/layouts/{id}    delete a stored snapshot
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/netforce/internal/metrics"
	"github.com/matzehuels/netforce/pkg/pipeline"
	"github.com/matzehuels/netforce/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// Config wires a Server.
type Config struct {
	Runner   *pipeline.Runner
	Store    store.Store
	Metrics  *metrics.Metrics // optional
	Logger   *log.Logger
	Defaults pipeline.Options // base options, overridden per request
	Server   pipeline.ServerConfig
}

// Server is the HTTP front end of the pipeline.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	metrics  *metrics.Metrics
	logger   *log.Logger
	defaults pipeline.Options
	cfg      pipeline.ServerConfig
}

// New creates a server. Runner and Store are required.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil || cfg.Store == nil {
		return nil, errors.New("api: runner and store are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	c := pipeline.Config{Server: cfg.Server}
	c.SetServerDefaults()
	return &Server{
		runner:   cfg.Runner,
		store:    cfg.Store,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		defaults: cfg.Defaults,
		cfg:      c.Server,
	}, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/v1/layouts", func(r chi.Router) {
		r.Post("/", s.createLayout)
		r.Get("/", s.listLayouts)
		r.Get("/{id}", s.getLayout)
		r.Delete("/{id}", s.deleteLayout)
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
