package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mariposa-trails/trailhead/errors"
)

// ShutdownTimeout bounds graceful shutdown before in-flight requests are dropped
const ShutdownTimeout = 10 * time.Second

// Start begins serving on the configured port and blocks until the listener
// stops. A closed listener after Stop is not reported as an error.
func (s *Server) Start() error {
	mux := s.setupHTTPRoutes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Infow("Server ready",
		"url", fmt.Sprintf("http://localhost:%d", s.cfg.Server.Port),
		"port", s.cfg.Server.Port,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server failed")
	}
	return nil
}

// Stop gracefully shuts down the server, draining in-flight requests
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Infow("Initiating server shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warnw("Graceful shutdown timed out, forcing close", "error", err)
		return errors.Wrap(s.httpServer.Close(), "forced server close")
	}

	s.logger.Infow("Server shutdown complete")
	return nil
}
