// Package webserver stands up the shared HTTP server used by Mardens
// services: a chi router with request-id, logging, and permissive CORS
// middleware, caller-registered API routes, and an embedded
// static-asset fallback.
//
// Caller routes are registered before the asset fallback, so API
// routes always take precedence over asset serving for overlapping
// paths. That ordering is a correctness invariant, not an
// implementation detail; it has been misconfigured before (see
// CHANGELOG).
package webserver

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// DefaultMaxJSONBody caps request bodies at 4 KiB, matching the
// historical limit of the services this library grew out of.
const DefaultMaxJSONBody int64 = 4096

// Config describes a server. Port is required; everything else has a
// usable default.
type Config struct {
	// Port is the TCP port to listen on.
	Port int

	// Env is "prod" or a development environment string. It only
	// affects error rendering in handlers built with httperr.
	Env string

	// Logger receives request logs. Defaults to a no-op logger.
	Logger *zap.Logger

	// Routes registers API routes and injects shared state (the
	// connection pool, typically). It runs before the static
	// fallback is installed.
	Routes func(chi.Router)

	// Assets is the embedded static tree served for paths no route
	// claims. Unknown paths fall back to its index.html. Nil
	// disables asset serving.
	Assets fs.FS

	// MaxJSONBody bounds request body size. Zero means
	// DefaultMaxJSONBody; negative disables the limit.
	MaxJSONBody int64
}

// Server is a configured HTTP server. Its completion (Start
// returning) represents shutdown.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// New builds a Server from cfg. The handler chain is fixed:
// request-id, logging, CORS, body limit, caller routes, asset
// fallback — in that order.
func New(cfg Config) (*Server, error) {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(logger))
	// The config service and its consumers live on internal hosts;
	// CORS is fully open, as the services have always run.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	limit := cfg.MaxJSONBody
	if limit == 0 {
		limit = DefaultMaxJSONBody
	}
	if limit > 0 {
		r.Use(BodyLimit(limit))
	}

	// Caller routes first, asset fallback last. Do not reorder.
	if cfg.Routes != nil {
		cfg.Routes(r)
	}
	if cfg.Assets != nil {
		r.NotFound(AssetHandler(cfg.Assets, logger))
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: logger,
	}, nil
}

// Handler exposes the root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start binds the listening socket and serves until Shutdown or a
// listener error. A graceful shutdown returns nil.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
