package server

import (
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/oauth2login"
)

// FailureMatcher decides whether a delegate handles a terminal
// authentication failure.
type FailureMatcher func(err error) bool

// FailureHandler writes the HTTP response for a terminal failure. Bodies
// never carry stack traces or internal identifiers.
type FailureHandler func(w http.ResponseWriter, r *http.Request, err error)

type failureDelegate struct {
	matches FailureMatcher
	handle  FailureHandler
}

// FailureDispatcher maps a terminal authentication failure to the
// delegate registered for it. Delegates are evaluated strictly in
// registration order, one at a time; the first match wins and later
// delegates are never consulted.
type FailureDispatcher struct {
	delegates []failureDelegate
	fallback  FailureHandler
}

// NewFailureDispatcher creates a dispatcher with the given fallback for
// failures no delegate claims.
func NewFailureDispatcher(fallback FailureHandler) *FailureDispatcher {
	return &FailureDispatcher{fallback: fallback}
}

// Register appends a delegate. Order of registration is significant.
func (d *FailureDispatcher) Register(matches FailureMatcher, handle FailureHandler) *FailureDispatcher {
	d.delegates = append(d.delegates, failureDelegate{matches: matches, handle: handle})
	return d
}

// Handle dispatches the failure to the first matching delegate.
func (d *FailureDispatcher) Handle(w http.ResponseWriter, r *http.Request, err error) {
	log.Debug().Err(err).Str("path", r.URL.Path).Msg("authentication failure")
	for _, delegate := range d.delegates {
		if delegate.matches(err) {
			delegate.handle(w, r, err)
			return
		}
	}
	d.fallback(w, r, err)
}

// DefaultFailureDispatcher translates the failure taxonomy to HTTP:
// account-status failures are 403, OAuth2 protocol failures are 401 with
// the error code in the challenge, everything else is a plain 401.
func DefaultFailureDispatcher() *FailureDispatcher {
	return NewFailureDispatcher(unauthorizedHandler()).
		Register(authn.IsAccountStatus, forbiddenHandler()).
		Register(isOAuth2Error, oauth2FailureHandler())
}

func isOAuth2Error(err error) bool {
	var oauthErr *oauth2login.Error
	return stderrors.As(err, &oauthErr)
}

func forbiddenHandler() FailureHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		WriteChallenge(w, BearerChallenge{Error: "access_denied"})
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	}
}

func oauth2FailureHandler() FailureHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		var oauthErr *oauth2login.Error
		if !stderrors.As(err, &oauthErr) {
			unauthorizedHandler()(w, r, err)
			return
		}
		challenge := BearerChallenge{
			Error:            oauthErr.Code,
			ErrorDescription: oauthErr.Description,
			ErrorURI:         oauthErr.URI,
		}
		if oauthErr.Code == oauth2login.ErrorCodeInsufficientScope {
			challenge.Scope = oauthErr.Description
			challenge.ErrorDescription = ""
		}
		WriteChallenge(w, challenge)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
}

func unauthorizedHandler() FailureHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		WriteChallenge(w, BearerChallenge{Error: "invalid_token"})
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
}
