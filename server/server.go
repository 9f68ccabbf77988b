package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mariposa-trails/trailhead/auth"
	"github.com/mariposa-trails/trailhead/config"
	"github.com/mariposa-trails/trailhead/trails"
)

// Server is the Trailhead HTTP server. It owns the route table and holds
// the services handlers depend on.
type Server struct {
	cfg       *config.Config
	service   *trails.Service
	relocator *trails.Relocator
	authSvc   *auth.Service
	authMW    *auth.Middleware
	logger    *zap.SugaredLogger

	httpServer *http.Server
}

// NewServer wires the HTTP surface over the given services.
func NewServer(cfg *config.Config, service *trails.Service, relocator *trails.Relocator, authSvc *auth.Service, logger *zap.SugaredLogger) *Server {
	return &Server{
		cfg:       cfg,
		service:   service,
		relocator: relocator,
		authSvc:   authSvc,
		authMW:    auth.NewMiddleware(authSvc, logger),
		logger:    logger,
	}
}
