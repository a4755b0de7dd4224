package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-middleware/authn"
)

// SecurityContextMiddleware installs a fresh security context for the
// request. The context lives on the request and is discarded with it;
// nothing is shared between requests.
func (s *Server) SecurityContextMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := authn.NewSecurityContext()
		next(w, r.WithContext(authn.WithSecurityContext(r.Context(), sc)))
	}
}

// BearerAuthMiddleware authenticates a Bearer token from the
// Authorization header through the provider chain and installs the
// result. Requests without a bearer token pass through unauthenticated;
// a present-but-invalid token is rejected with a challenge.
func (s *Server) BearerAuthMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next(w, r)
				return
			}

			result, err := s.authenticator.Authenticate(r.Context(), authn.NewToken(authn.KindBearer, raw, raw))
			if err != nil {
				if sc := authn.SecurityContextFrom(r.Context()); sc != nil {
					sc.Clear()
				}
				s.failures.Handle(w, r, err)
				return
			}

			if sc := authn.SecurityContextFrom(r.Context()); sc != nil {
				sc.SetToken(result)
			}
			next(w, r)
		}
	}
}

// RequireAuthenticated rejects requests whose security context holds no
// authenticated token.
func (s *Server) RequireAuthenticated() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sc := authn.SecurityContextFrom(r.Context())
			if sc.Token() == nil || !sc.Token().Authenticated() {
				WriteChallenge(w, BearerChallenge{})
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
