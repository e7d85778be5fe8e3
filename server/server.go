package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-tenant-auth/auth"
	"github.com/jrsteele09/go-tenant-auth/internal/config"
	"github.com/jrsteele09/go-tenant-auth/internal/metrics"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Server exposes the token service over HTTP
type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	router    chi.Router
	routes    []string
	config    config.Config
	tokens    *auth.TokenService
	directory users.Directory
	metrics   *metrics.Recorder
	logger    zerolog.Logger
}

type ServerOption func(*Server)

func WithMetrics(recorder *metrics.Recorder) ServerOption {
	return func(s *Server) {
		s.metrics = recorder
	}
}

func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(c config.Config, tokens *auth.TokenService, directory users.Directory, options ...ServerOption) (*Server, error) {
	if c == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if tokens == nil {
		return nil, errors.New("[Server New] token service is required")
	}
	if directory == nil {
		return nil, errors.New("[Server New] user directory is required")
	}

	s := &Server{
		env:       c.GetEnv(),
		router:    chi.NewRouter(),
		config:    c,
		tokens:    tokens,
		directory: directory,
		logger:    log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) registerRoute(method, pattern string, handler http.Handler) {
	s.routes = append(s.routes, method+" "+pattern)
	s.router.Method(method, pattern, handler)
}

// Routes lists the registered "METHOD /path" patterns
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		var method, path string
		if _, err := fmt.Sscanf(route, "%s %s", &method, &path); err != nil {
			continue
		}
		s.logRoute(method, path)
	}
}

func (s *Server) logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	s.logger.Info().Msgf("[%-19s] %s", displayMethod, path)
}
