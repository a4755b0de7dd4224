package oauth2login

import "context"

// RequestRepo is the short-lived store correlating an outbound
// authorization request with its eventual callback. Keys are state values.
//
// Remove returns what it removed so the caller can validate the consumed
// request; lookup-then-delete is atomic per state, so two concurrent
// callbacks for the same stored request can never both succeed.
type RequestRepo interface {
	Save(request *AuthorizationRequest) error
	Load(state string) (*AuthorizationRequest, error)
	Remove(state string) (*AuthorizationRequest, error)
}

// Exchanger performs the authorization-code-for-access-token exchange
// against the provider's token endpoint. Protocol-level failures (non-2xx,
// malformed body) surface as *Error with code invalid_token_response;
// transport failures wrap authn.ErrServiceUnavailable so they are never
// mistaken for bad credentials.
type Exchanger interface {
	Exchange(ctx context.Context, grant GrantRequest) (*TokenResponse, error)
}

// UserService fetches the end user's attributes with the access token and
// produces the principal. Failures surface as *Error with code
// invalid_user_info_response.
type UserService interface {
	LoadUser(ctx context.Context, request UserRequest) (*User, error)
}

// AuthoritiesMapper maps the authorities derived from user attributes to
// the authorities actually granted. The default is the identity mapping.
type AuthoritiesMapper func(authorities []string) []string
