package preauth

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-middleware/authn"
)

// PrincipalExtractor pulls the externally-established principal from a
// request. Returning nil means this mechanism does not apply to the
// request, which is not an error.
type PrincipalExtractor func(r *http.Request) any

// CredentialsExtractor pulls whatever credential material accompanies the
// principal. Many pre-authentication schemes have none; returning nil is
// fine.
type CredentialsExtractor func(r *http.Request) any

// HeaderPrincipal extracts the principal from a trusted proxy header.
// The empty header maps to nil so absent headers pass through.
func HeaderPrincipal(header string) PrincipalExtractor {
	return func(r *http.Request) any {
		value := r.Header.Get(header)
		if value == "" {
			return nil
		}
		return value
	}
}

// HeaderCredentials extracts credentials from a header, nil when absent.
func HeaderCredentials(header string) CredentialsExtractor {
	return func(r *http.Request) any {
		value := r.Header.Get(header)
		if value == "" {
			return nil
		}
		return value
	}
}

// Adapter is the pre-authenticated entry middleware. When the request has
// no established principal yet, it extracts one, runs it through the
// authenticator and installs the result in the request's security
// context. Requests without an extractable principal pass through
// untouched.
type Adapter struct {
	authenticator     authn.Authenticator
	principal         PrincipalExtractor
	credentials       CredentialsExtractor
	continueOnFailure bool
}

// AdapterOption modifies an Adapter at construction time.
type AdapterOption func(*Adapter)

// WithCredentialsExtractor sets the credentials extractor. Without it, no
// credentials accompany the extracted principal.
func WithCredentialsExtractor(extractor CredentialsExtractor) AdapterOption {
	return func(a *Adapter) {
		a.credentials = extractor
	}
}

// WithContinueOnFailure lets the request continue unauthenticated when
// the extracted principal fails authentication, so a later mechanism in
// the pipeline can still authenticate it. The default rejects the request
// immediately.
func WithContinueOnFailure() AdapterOption {
	return func(a *Adapter) {
		a.continueOnFailure = true
	}
}

// NewAdapter creates the entry middleware around an authenticator and a
// principal extractor.
func NewAdapter(authenticator authn.Authenticator, principal PrincipalExtractor, options ...AdapterOption) (*Adapter, error) {
	if authenticator == nil || principal == nil {
		return nil, errors.New("[preauth.NewAdapter] authenticator and principal extractor are required")
	}
	a := &Adapter{
		authenticator: authenticator,
		principal:     principal,
		credentials:   func(*http.Request) any { return nil },
	}
	for _, opt := range options {
		opt(a)
	}
	return a, nil
}

// Middleware authenticates the request when a principal can be extracted
// and none is established yet.
func (a *Adapter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := authn.SecurityContextFrom(r.Context())
		if sc != nil && sc.Token() != nil && sc.Token().Authenticated() {
			next(w, r)
			return
		}

		principal := a.principal(r)
		if principal == nil {
			next(w, r)
			return
		}

		token := authn.NewToken(authn.KindPreAuthenticated, principal, a.credentials(r))
		result, err := a.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if sc != nil {
				sc.Clear()
			}
			if a.continueOnFailure {
				log.Debug().Err(err).Msg("pre-authentication failed, continuing unauthenticated")
				next(w, r)
				return
			}
			status := http.StatusUnauthorized
			if authn.IsAccountStatus(err) {
				status = http.StatusForbidden
			}
			http.Error(w, http.StatusText(status), status)
			return
		}

		if sc == nil {
			sc = authn.NewSecurityContext()
			r = r.WithContext(authn.WithSecurityContext(r.Context(), sc))
		}
		sc.SetToken(result)
		next(w, r)
	}
}
