package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/cravewise/backend/config"
)

// writeSlack is added to the completion timeout so a slow vision call can
// still write its response.
const writeSlack = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

// New creates a new server instance serving handler on cfg.Addr()
func New(cfg *config.Config, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       time.Minute,
			WriteTimeout:      cfg.LLMTimeout + writeSlack,
			IdleTimeout:       2 * time.Minute,
		},
		logger: logger.Named("server"),
	}
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Serve accepts connections on ln until the server stops. A graceful
// shutdown is not reported as an error.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting HTTP server", zap.String("addr", ln.Addr().String()))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.http.Shutdown(ctx)
}
