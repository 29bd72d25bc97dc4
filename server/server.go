package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-bff-auth/idp"
	"github.com/jrsteele09/go-bff-auth/internal/config"
	"github.com/jrsteele09/go-bff-auth/sessions"
)

// Server is the BFF authentication front. It owns the encrypted session
// store and the shared IdP client handle; per-request session state
// lives entirely in the cookie, so handlers share no mutable state
// beyond the lazily constructed IdP client.
type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config
	store  *sessions.Store
	idp    *idp.Client
}

// New builds the server. A missing or undersized session secret is a
// construction error: the process must not come up without one.
func New(cfg config.Config) (*Server, error) {
	store, err := sessions.NewStore(cfg.GetSessionCookieName(), cfg.GetSessionSecret())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session store: %w", err)
	}

	s := &Server{
		mux:    http.NewServeMux(),
		config: cfg,
		store:  store,
		idp:    idp.NewClient(cfg),
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	displayMethod := Gray + fmt.Sprintf(" %-7s", method) + ResetColor
	if color, ok := methodColors[method]; ok {
		displayMethod = color + fmt.Sprintf(" %-7s", method) + ResetColor
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}
