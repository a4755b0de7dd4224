package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// OAuth2 login flow
	RouteAuthorization = "/oauth2/authorization/{registrationID}"
	RouteCallback      = "/login/oauth2/code/{registrationID}"
	RouteLogout        = "/logout"

	// API routes (bearer-token protected)
	RouteAPIMe = "/api/me"

	// Operational
	RouteHealth = "/healthz"
)
