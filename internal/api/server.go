package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tapelabs/disclosure-tape/internal/config"
)

// Server wraps the HTTP listener with graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func NewServer(cfg config.ServerConfig, handlers *Handlers, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      NewRouter(handlers),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// Start serves until the listener closes. Returns nil on a clean
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server started", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until the context expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping http server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
