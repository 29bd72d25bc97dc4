package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", s.IndexHandler())

	// AUTH FLOW
	s.RegisterRouteHandler("GET "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthCallback, ChainMiddleware(s.CallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))

	// PROTECTED RESOURCES
	s.RegisterRouteHandler("GET "+RouteProtected,
		ChainMiddleware(s.ProtectedHandler(), append(s.APIMiddleware(), s.RequireAuthenticated())...))
	s.RegisterRouteHandler("GET "+RouteProtectedAdmin,
		ChainMiddleware(s.ProtectedAdminHandler(), append(s.APIMiddleware(), s.RequireAnyRole(adminRoles...))...))

	// DIAGNOSTICS
	s.RegisterRouteHandler("GET "+RouteDebugRoles, ChainMiddleware(s.DebugRolesHandler(), s.APIMiddleware()...))
}
