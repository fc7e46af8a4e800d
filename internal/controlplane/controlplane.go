// Package controlplane serves the local HTTP API for inspecting and
// nudging a running daemon.
package controlplane

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prashanthellina/pullbox/internal/controlplane/handlers"
	"github.com/prashanthellina/pullbox/internal/controlplane/middleware"
)

// Config holds the control plane listener settings.
type Config struct {
	Addr  string
	Token string
}

type Server struct {
	config *Config
	server *http.Server
	log    *slog.Logger
}

func New(config *Config, daemon *handlers.Daemon, log *slog.Logger) *Server {
	routes := SetupRoutes(daemon, &RouteConfig{
		Auth: middleware.TokenAuthConfig{
			Token: config.Token,
		},
	})

	httpServer := &http.Server{
		Addr:              config.Addr,
		Handler:           routes,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	return &Server{
		config: config,
		server: httpServer,
		log:    log,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.log.Info("control plane start", "addr", fmt.Sprintf("http://%s", s.config.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("control plane listen: %w", err)
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("control plane stop")
	return s.server.Shutdown(ctx)
}
