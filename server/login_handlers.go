package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/oauth2login"
	"github.com/jrsteele09/go-auth-middleware/tokenstore"
)

const loginSuccessURL = "/"

// AuthorizationRedirectHandler initiates the authorization-code flow for
// a registration: it expands the redirect URI against the inbound host,
// builds and stores the authorization request, and sends the user agent
// to the provider. The stored request carries the concrete redirect URI,
// never the template.
func (s *Server) AuthorizationRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registrationID := r.PathValue("registrationID")
		registration, err := s.registrations.Get(registrationID)
		if err != nil {
			http.Error(w, "unknown client registration", http.StatusNotFound)
			return
		}

		redirectURI := registration.RedirectURI
		if registration.IsTemplated() {
			redirectURI = registration.ExpandRedirectURI(baseURL(r))
		}

		state, err := oauth2login.NewState()
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		request := &oauth2login.AuthorizationRequest{
			RegistrationID:   registration.ID,
			AuthorizationURI: registration.AuthorizationURI,
			ClientID:         registration.ClientID,
			RedirectURI:      redirectURI,
			Scopes:           append([]string(nil), registration.Scopes...),
			State:            state,
			ResponseType:     "code",
		}
		if err := s.requests.Save(request); err != nil {
			log.Error().Err(err).Str("registration", registration.ID).Msg("could not store authorization request")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, request.RedirectURL(), http.StatusFound)
	}
}

// CallbackHandler completes the flow: it consumes the stored
// authorization request (exactly once, regardless of outcome), hands
// request and response to the provider chain, and on success records the
// authorized client and redirects. A replayed state finds nothing to
// consume and is rejected.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue covers both GET query params and form_post bodies.
		state := r.FormValue("state")

		stored, err := s.requests.Remove(state)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if stored == nil {
			s.failures.Handle(w, r, oauth2login.NewError(
				oauth2login.ErrorCodeAuthorizationRequestNotFound, "no authorization request for callback"))
			return
		}

		registration, err := s.registrations.Get(stored.RegistrationID)
		if err != nil {
			s.failures.Handle(w, r, oauth2login.NewError(
				oauth2login.ErrorCodeAuthorizationRequestNotFound, "client registration no longer exists"))
			return
		}

		response := &oauth2login.AuthorizationResponse{
			Code:             r.FormValue("code"),
			State:            state,
			RedirectURI:      baseURL(r) + r.URL.Path,
			ErrorCode:        r.FormValue("error"),
			ErrorDescription: r.FormValue("error_description"),
			ErrorURI:         r.FormValue("error_uri"),
		}

		token := authn.NewToken(authn.KindOAuth2Login, &oauth2login.LoginRequest{
			Registration: *registration,
			Exchange:     oauth2login.Exchange{Request: stored, Response: response},
		}, nil)

		result, err := s.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if sc := authn.SecurityContextFrom(r.Context()); sc != nil {
				sc.Clear()
			}
			s.failures.Handle(w, r, err)
			return
		}

		login, ok := result.Principal().(*oauth2login.LoginResult)
		if !ok {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if err := s.tokens.Upsert(&tokenstore.AuthorizedClient{
			RegistrationID: login.Registration.ID,
			Principal:      login.Name(),
			AccessToken:    login.AccessToken,
			RefreshToken:   login.RefreshToken,
		}); err != nil {
			log.Error().Err(err).Str("registration", login.Registration.ID).Msg("could not store authorized client")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if sc := authn.SecurityContextFrom(r.Context()); sc != nil {
			sc.SetToken(result)
		}
		authn.PublishEvent(s.publisher, authn.EventInteractiveSuccess, result, nil)

		http.Redirect(w, r, loginSuccessURL, http.StatusFound)
	}
}

// LogoutHandler evicts the principal's stored access tokens and releases
// its concurrent-session slot.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := authn.SecurityContextFrom(r.Context())
		if sc.Token() == nil || !sc.Token().Authenticated() {
			http.Redirect(w, r, loginSuccessURL, http.StatusFound)
			return
		}

		principal := sc.Token().PrincipalName()
		if err := s.tokens.DeleteForPrincipal(principal); err != nil {
			log.Error().Err(err).Msg("could not evict authorized clients")
		}
		if s.sessions != nil {
			s.sessions.Release(principal)
		}
		sc.Clear()

		http.Redirect(w, r, loginSuccessURL, http.StatusFound)
	}
}
