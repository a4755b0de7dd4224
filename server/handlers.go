package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-auth-middleware/authn"
)

const contentTypeJSON = "application/json; charset=utf-8"

// MeHandler returns the authenticated principal's identity. Requires an
// authenticated security context.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := authn.SecurityContextFrom(r.Context()).Token()

		resp := map[string]any{
			"principal":   token.PrincipalName(),
			"kind":        token.Kind(),
			"authorities": token.Authorities(),
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
