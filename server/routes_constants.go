package server

const (
	RouteAuthLogin    = "/auth/login"
	RouteAuthCallback = "/auth/callback"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthRefresh  = "/auth/refresh"
	RouteAuthSession  = "/auth/session"

	RouteProtected      = "/api/protected"
	RouteProtectedAdmin = "/api/protected/admin"
	RouteDebugRoles     = "/debug/roles"
)

// adminRoles are the role names that grant access to the admin
// endpoint; holding any one of them suffices.
var adminRoles = []string{"admin", "realm-admin"}
