package server

// Route path constants
const (
	RouteAuthLogin   = "/auth/login"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthLogout  = "/auth/logout"
	RouteAuthMe      = "/auth/me"

	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
