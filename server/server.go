// Package server is the HTTP surface of the authentication middleware: it
// wires the provider chain, the OAuth2 login flow and the token store
// behind stdlib routing with method-qualified patterns.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/internal/config"
	"github.com/jrsteele09/go-auth-middleware/oauth2login"
	"github.com/jrsteele09/go-auth-middleware/registrations"
	"github.com/jrsteele09/go-auth-middleware/tokenstore"
)

type Server struct {
	env           string // Environment (e.g., "DEV", "production")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	authenticator authn.Authenticator
	registrations registrations.Repo
	requests      oauth2login.RequestRepo
	tokens        tokenstore.Store
	sessions      *authn.SessionRegistry
	publisher     authn.Publisher
	failures      *FailureDispatcher
}

// Option modifies a Server at construction time.
type Option func(*Server)

// WithPublisher sets the sink for interactive success events.
func WithPublisher(publisher authn.Publisher) Option {
	return func(s *Server) {
		s.publisher = publisher
	}
}

// WithSessionRegistry lets the logout handler release the principal's
// session slot.
func WithSessionRegistry(sessions *authn.SessionRegistry) Option {
	return func(s *Server) {
		s.sessions = sessions
	}
}

// WithFailureDispatcher replaces the default failure handling.
func WithFailureDispatcher(failures *FailureDispatcher) Option {
	return func(s *Server) {
		s.failures = failures
	}
}

func New(cfg config.Config, authenticator authn.Authenticator, registrationRepo registrations.Repo, requestRepo oauth2login.RequestRepo, tokens tokenstore.Store, options ...Option) (*Server, error) {
	if authenticator == nil || registrationRepo == nil || requestRepo == nil || tokens == nil {
		return nil, errors.New("[Server New] authenticator, registration repo, request repo and token store are required")
	}

	s := &Server{
		mux:           http.NewServeMux(),
		config:        cfg,
		authenticator: authenticator,
		registrations: registrationRepo,
		requests:      requestRepo,
		tokens:        tokens,
	}
	s.env = cfg.GetEnv()
	for _, opt := range options {
		opt(s)
	}
	if s.failures == nil {
		s.failures = DefaultFailureDispatcher()
	}

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
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

// baseURL reconstructs the externally visible base URL of the inbound
// request, used to expand templated redirect URIs.
func baseURL(r *http.Request) string {
	return getScheme(r) + "://" + r.Host
}
