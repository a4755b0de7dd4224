// Package userinfo fetches end-user attributes from a provider's
// user-info endpoint and constructs the login principal.
package userinfo

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/oauth2login"
)

// DefaultTimeout bounds the user-info call.
const DefaultTimeout = 30 * time.Second

// RESTService is the default oauth2login.UserService: it sends the access
// token as a Bearer header to the registration's user-info endpoint and
// builds the principal from the JSON attribute map.
type RESTService struct {
	httpClient *http.Client
}

var _ oauth2login.UserService = (*RESTService)(nil)

// Option modifies a RESTService at construction time.
type Option func(*RESTService)

// WithHTTPClient replaces the default bounded-timeout HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *RESTService) {
		s.httpClient = client
	}
}

// NewRESTService creates a user-info service with a bounded default
// timeout.
func NewRESTService(options ...Option) *RESTService {
	s := &RESTService{
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// LoadUser implements oauth2login.UserService. The registration must name
// both the user-info endpoint and the user-name attribute before any
// request goes out.
func (s *RESTService) LoadUser(ctx context.Context, request oauth2login.UserRequest) (*oauth2login.User, error) {
	registration := request.Registration
	if registration.UserInfoURI == "" {
		return nil, oauth2login.NewError(oauth2login.ErrorCodeMissingUserInfoURI,
			"no user info endpoint configured for registration "+registration.ID)
	}
	if registration.UserNameAttr == "" {
		return nil, oauth2login.NewError(oauth2login.ErrorCodeMissingUserNameAttribute,
			"no user name attribute configured for registration "+registration.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, registration.UserInfoURI, nil)
	if err != nil {
		return nil, oauth2login.WrapError(oauth2login.ErrorCodeInvalidUserInfoResponse, "building user info request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+request.Token.Value)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(authn.ErrServiceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, oauth2login.NewError(oauth2login.ErrorCodeInvalidUserInfoResponse,
			"user info endpoint returned "+resp.Status)
	}

	var attributes map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&attributes); err != nil {
		return nil, oauth2login.WrapError(oauth2login.ErrorCodeInvalidUserInfoResponse, "malformed user info body", err)
	}

	return oauth2login.NewUser(registration.UserNameAttr, attributes, defaultAuthorities(request.Token.Scopes))
}

// defaultAuthorities derives authorities from the granted scopes plus the
// baseline user authority. An authorities mapper on the login provider can
// rewrite these.
func defaultAuthorities(scopes []string) []string {
	authorities := []string{"oauth2_user"}
	for _, scope := range scopes {
		authorities = append(authorities, "scope:"+scope)
	}
	return authorities
}
