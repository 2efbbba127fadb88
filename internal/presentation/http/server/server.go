// Package server owns the HTTP listener lifecycle for the engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/VelourMedia/pulsetrack-go/internal/application/container"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/VelourMedia/pulsetrack-go/internal/presentation/http/routes"
	"github.com/VelourMedia/pulsetrack-go/pkg/config"
)

// maxHeaderBytes caps request headers; signal beacons and chat payloads
// carry everything in the body.
const maxHeaderBytes = 1 << 20

// Server wraps the engine's HTTP listener
type Server struct {
	httpServer *http.Server
	logger     *logging.ChanneledLogger
}

// New builds the listener around the engine's route tree
func New(port string, c *container.Container) *Server {
	httpServer := &http.Server{
		Addr:           ":" + port,
		Handler:        routes.SetupRoutes(c),
		ReadTimeout:    config.ServerReadTimeout,
		WriteTimeout:   config.ServerWriteTimeout,
		IdleTimeout:    config.ServerIdleTimeout,
		MaxHeaderBytes: maxHeaderBytes,
	}

	return &Server{
		httpServer: httpServer,
		logger:     c.Logger,
	}
}

// Start listens until Stop is called. A deliberate shutdown is not an
// error.
func (s *Server) Start() error {
	s.logger.System().Info("HTTP listener up", "address", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listener: %w", err)
	}
	return nil
}

// Stop drains in-flight requests within the context deadline
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Shutdown().Info("Draining HTTP connections")
	return s.httpServer.Shutdown(ctx)
}
