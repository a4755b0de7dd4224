package oauth2login

import (
	"context"
	"crypto/subtle"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/registrations"
)

// ScopeOpenID marks an authorization request as an OpenID Connect login.
// The plain OAuth2 provider declines such requests so the OIDC provider
// can handle them.
const ScopeOpenID = "openid"

// LoginRequest is the unauthenticated payload carried by a KindOAuth2Login
// token: the registration the flow was initiated for and the
// request/response exchange to validate. The callback handler builds it
// after consuming the stored authorization request.
type LoginRequest struct {
	Registration registrations.Registration
	Exchange     Exchange
}

// LoginResult is the authenticated principal of a completed login: the
// end user, the granted access token and the client association.
type LoginResult struct {
	Registration  registrations.Registration
	User          *User
	AccessToken   AccessToken
	RefreshToken  string
	IDTokenClaims map[string]any // Verified ID token claims, OIDC only
}

// Name implements the principal-name contract.
func (r *LoginResult) Name() string { return r.User.Name() }

// LoginProvider authenticates OAuth2 authorization-code callbacks: it
// validates the state and redirect URI against the stored authorization
// request, exchanges the code for an access token, loads the end user and
// produces the authenticated principal.
//
// Requests whose scopes include "openid" are declined so the OIDC
// provider can verify the ID token as well.
type LoginProvider struct {
	exchanger   Exchanger
	userService UserService
	mapper      AuthoritiesMapper
}

var _ authn.Provider = (*LoginProvider)(nil)

// LoginProviderOption modifies a LoginProvider at construction time.
type LoginProviderOption func(*LoginProvider)

// WithAuthoritiesMapper replaces the default identity mapping of derived
// authorities.
func WithAuthoritiesMapper(mapper AuthoritiesMapper) LoginProviderOption {
	return func(p *LoginProvider) {
		p.mapper = mapper
	}
}

// NewLoginProvider creates the plain OAuth2 login provider.
func NewLoginProvider(exchanger Exchanger, userService UserService, options ...LoginProviderOption) (*LoginProvider, error) {
	if exchanger == nil {
		return nil, errors.New("[NewLoginProvider] exchanger is required")
	}
	if userService == nil {
		return nil, errors.New("[NewLoginProvider] user service is required")
	}
	p := &LoginProvider{
		exchanger:   exchanger,
		userService: userService,
		mapper:      identityMapper,
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

// Supports implements authn.Provider.
func (p *LoginProvider) Supports(kind string) bool {
	return kind == authn.KindOAuth2Login
}

// Authenticate implements authn.Provider.
func (p *LoginProvider) Authenticate(ctx context.Context, token *authn.Token) (*authn.Token, error) {
	login, ok := token.Principal().(*LoginRequest)
	if !ok {
		return nil, nil
	}
	if hasScope(login.Exchange.Request.Scopes, ScopeOpenID) {
		// An OpenID Connect request needs ID-token verification; leave it
		// for the OIDC provider.
		return nil, nil
	}

	grant, tokenResponse, err := validateAndExchange(ctx, p.exchanger, login)
	if err != nil {
		return nil, err
	}

	user, err := p.userService.LoadUser(ctx, UserRequest{
		Registration: grant.Registration,
		Token:        tokenResponse.AccessToken,
	})
	if err != nil {
		return nil, err
	}

	result := &LoginResult{
		Registration: grant.Registration,
		User:         user,
		AccessToken:  tokenResponse.AccessToken,
		RefreshToken: tokenResponse.RefreshToken,
	}
	return authn.NewAuthenticatedToken(authn.KindOAuth2Login, result, nil, p.mapper(user.Authorities())), nil
}

// validateAndExchange runs the callback validation shared by the OAuth2
// and OIDC providers, then performs the code-for-token exchange.
//
// Validation order: a provider error redirect fails immediately without
// comparing state; then the state must match the stored request exactly;
// then the callback URI must equal the stored redirect URI. When the
// registration's redirect URI is still templated, the concrete URI
// captured at initiation is substituted into a working copy before the
// exchange - the template form is never transmitted.
func validateAndExchange(ctx context.Context, exchanger Exchanger, login *LoginRequest) (GrantRequest, *TokenResponse, error) {
	request := login.Exchange.Request
	response := login.Exchange.Response

	if response.IsError() {
		return GrantRequest{}, nil, &Error{
			Code:        response.ErrorCode,
			Description: response.ErrorDescription,
			URI:         response.ErrorURI,
		}
	}
	if subtle.ConstantTimeCompare([]byte(response.State), []byte(request.State)) != 1 {
		return GrantRequest{}, nil, NewError(ErrorCodeInvalidStateParameter, "state parameter does not match authorization request")
	}
	if response.RedirectURI != request.RedirectURI {
		return GrantRequest{}, nil, NewError(ErrorCodeInvalidRedirectURIParameter, "callback URI does not match authorization request")
	}

	registration := login.Registration
	if registration.IsTemplated() {
		registration = registration.WithRedirectURI(request.RedirectURI)
	}

	grant := GrantRequest{Registration: registration, Exchange: login.Exchange}
	tokenResponse, err := exchanger.Exchange(ctx, grant)
	if err != nil {
		return GrantRequest{}, nil, err
	}
	return grant, tokenResponse, nil
}

func identityMapper(authorities []string) []string { return authorities }

func hasScope(scopes []string, scope string) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}
