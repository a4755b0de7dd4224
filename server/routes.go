package server

func (s *Server) initRoutes() {
	// OAuth2 login flow
	s.RegisterRouteFunc("GET "+RouteAuthorization, ChainMiddleware(s.AuthorizationRedirectHandler(), s.baseMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.baseMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.baseMiddleware()...)) // For form_post response mode
	s.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.baseMiddleware(s.BearerAuthMiddleware())...))

	// API routes (bearer-token protected)
	s.RegisterRouteFunc("GET "+RouteAPIMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.BearerAuthMiddleware(), s.RequireAuthenticated())...))

	// Operational
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
}
