package oauth2login

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/registrations"
)

// ClaimSubject is the ID token claim used as the default user name
// attribute when the registration does not configure one.
const ClaimSubject = "sub"

// IDTokenVerifier validates a raw ID token and returns its claims.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (map[string]any, error)
}

// VerifierFactory builds an ID token verifier for a registration. The
// default factory fetches the provider's JWK set remotely.
type VerifierFactory func(ctx context.Context, registration registrations.Registration) (IDTokenVerifier, error)

// OIDCLoginProvider authenticates OpenID Connect authorization-code
// callbacks. It runs the same callback validation and token exchange as
// the plain OAuth2 provider, then additionally verifies the ID token and
// builds the end user from its claims. Only requests whose scopes include
// "openid" are handled.
type OIDCLoginProvider struct {
	exchanger   Exchanger
	userService UserService
	mapper      AuthoritiesMapper
	verifiers   VerifierFactory
}

var _ authn.Provider = (*OIDCLoginProvider)(nil)

// OIDCLoginProviderOption modifies an OIDCLoginProvider at construction time.
type OIDCLoginProviderOption func(*OIDCLoginProvider)

// WithVerifierFactory replaces the remote JWK set verifier factory.
func WithVerifierFactory(factory VerifierFactory) OIDCLoginProviderOption {
	return func(p *OIDCLoginProvider) {
		p.verifiers = factory
	}
}

// WithOIDCAuthoritiesMapper replaces the default identity mapping of
// derived authorities.
func WithOIDCAuthoritiesMapper(mapper AuthoritiesMapper) OIDCLoginProviderOption {
	return func(p *OIDCLoginProvider) {
		p.mapper = mapper
	}
}

// NewOIDCLoginProvider creates the OpenID Connect login provider. The
// optional user service is consulted only for registrations that
// configure a user-info endpoint; the ID token claims serve otherwise.
func NewOIDCLoginProvider(exchanger Exchanger, userService UserService, options ...OIDCLoginProviderOption) (*OIDCLoginProvider, error) {
	if exchanger == nil {
		return nil, errors.New("[NewOIDCLoginProvider] exchanger is required")
	}
	p := &OIDCLoginProvider{
		exchanger:   exchanger,
		userService: userService,
		mapper:      identityMapper,
		verifiers:   remoteVerifierFactory,
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

// Supports implements authn.Provider.
func (p *OIDCLoginProvider) Supports(kind string) bool {
	return kind == authn.KindOAuth2Login
}

// Authenticate implements authn.Provider.
func (p *OIDCLoginProvider) Authenticate(ctx context.Context, token *authn.Token) (*authn.Token, error) {
	login, ok := token.Principal().(*LoginRequest)
	if !ok {
		return nil, nil
	}
	if !hasScope(login.Exchange.Request.Scopes, ScopeOpenID) {
		return nil, nil
	}

	grant, tokenResponse, err := validateAndExchange(ctx, p.exchanger, login)
	if err != nil {
		return nil, err
	}
	if tokenResponse.IDToken == "" {
		return nil, NewError(ErrorCodeInvalidIDToken, "token response did not include an id_token")
	}

	verifier, err := p.verifiers(ctx, grant.Registration)
	if err != nil {
		return nil, WrapError(ErrorCodeInvalidIDToken, "registration cannot verify ID tokens", err)
	}
	claims, err := verifier.Verify(ctx, tokenResponse.IDToken)
	if err != nil {
		return nil, WrapError(ErrorCodeInvalidIDToken, "ID token verification failed", err)
	}

	user, err := p.loadUser(ctx, grant, tokenResponse, claims)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{
		Registration:  grant.Registration,
		User:          user,
		AccessToken:   tokenResponse.AccessToken,
		RefreshToken:  tokenResponse.RefreshToken,
		IDTokenClaims: claims,
	}
	return authn.NewAuthenticatedToken(authn.KindOAuth2Login, result, nil, p.mapper(user.Authorities())), nil
}

// loadUser resolves the end user, preferring the user-info endpoint when
// the registration configures one and falling back to the verified ID
// token claims otherwise.
func (p *OIDCLoginProvider) loadUser(ctx context.Context, grant GrantRequest, tokenResponse *TokenResponse, claims map[string]any) (*User, error) {
	if p.userService != nil && grant.Registration.UserInfoURI != "" {
		return p.userService.LoadUser(ctx, UserRequest{
			Registration: grant.Registration,
			Token:        tokenResponse.AccessToken,
			IDToken:      tokenResponse.IDToken,
		})
	}
	nameAttr := grant.Registration.UserNameAttr
	if nameAttr == "" {
		nameAttr = ClaimSubject
	}
	authorities := append([]string{"oidc_user"}, scopeAuthorities(tokenResponse.AccessToken.Scopes)...)
	return NewUser(nameAttr, claims, authorities)
}

func scopeAuthorities(scopes []string) []string {
	authorities := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		authorities = append(authorities, "scope:"+scope)
	}
	return authorities
}

// remoteVerifierFactory builds a verifier backed by the registration's
// remote JWK set endpoint.
func remoteVerifierFactory(ctx context.Context, registration registrations.Registration) (IDTokenVerifier, error) {
	if registration.JWKSetURI == "" || registration.IssuerURI == "" {
		return nil, errors.Errorf("[remoteVerifierFactory] registration %q has no JWK set or issuer URI", registration.ID)
	}
	keySet := oidc.NewRemoteKeySet(ctx, registration.JWKSetURI)
	return &remoteVerifier{
		verifier: oidc.NewVerifier(registration.IssuerURI, keySet, &oidc.Config{ClientID: registration.ClientID}),
	}, nil
}

type remoteVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func (v *remoteVerifier) Verify(ctx context.Context, rawIDToken string) (map[string]any, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}
	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}
	return claims, nil
}
