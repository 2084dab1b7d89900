// Package server exposes the layout engine over HTTP.
//
// Every request carries its own board; the server keeps no board state
// between requests. Item heights can be resolved from an image directory
// shared by all requests, with decoded dimensions kept in a cache that may
// be shared between instances.
//
// Routes:
//
//	POST /v1/layout    board file → full layout
//	POST /v1/visible   board file + viewport → visible items
//	POST /v1/render    board file [+ viewport] → SVG
//	GET  /v1/healthz
//	GET  /v1/version
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/heights"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes = 4 << 20

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr string

	// Defaults fill board config fields a request leaves out.
	Defaults board.Config

	// ImageDir is the directory item image paths are resolved against.
	// Empty disables height resolution.
	ImageDir string

	// Resolver decodes image heights. Nil uses an uncached resolver.
	Resolver *heights.Resolver

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	cfg      Config
	logger   *log.Logger
	resolver *heights.Resolver
	router   chi.Router
}

// New creates a server and registers its routes.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = heights.NewResolver(heights.WithLogger(logger))
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Post("/layout", s.handleLayout)
			r.Post("/visible", s.handleVisible)
			r.Post("/render", s.handleRender)
		})
	})
	return r
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
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
