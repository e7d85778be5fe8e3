package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

func (s *Server) initRoutes() {
	s.router.Use(
		hlog.NewHandler(s.logger),
		hlog.RequestIDHandler("request_id", "X-Request-ID"),
		hlog.AccessHandler(s.accessLog),
		s.RecoverMiddleware,
		s.FrameSecurityMiddleware,
		s.CorsMiddleware,
		s.metrics.Middleware(routePattern),
	)

	s.registerRoute(http.MethodGet, RouteHealth, s.HealthHandler())
	if s.metrics != nil {
		s.registerRoute(http.MethodGet, RouteMetrics, s.metrics.Handler())
	}

	s.registerRoute(http.MethodPost, RouteAuthLogin, s.LoginHandler())
	s.registerRoute(http.MethodPost, RouteAuthRefresh, s.RefreshHandler())

	// Bearer token required
	s.registerRoute(http.MethodPost, RouteAuthLogout, s.RequireAuth(s.LogoutHandler()))
	s.registerRoute(http.MethodGet, RouteAuthMe, s.RequireAuth(s.MeHandler()))
}

// routePattern labels metrics with the matched chi pattern rather than the raw path
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}

func (s *Server) accessLog(r *http.Request, status, size int, duration time.Duration) {
	event := hlog.FromRequest(r).Info()
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
	}
	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
