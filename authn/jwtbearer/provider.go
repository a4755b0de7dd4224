// Package jwtbearer implements an authentication provider for bearer
// tokens issued as JWTs. It validates signature, expiry, and optionally
// issuer/audience, and turns the claims into an authenticated principal.
package jwtbearer

import (
	"context"
	stderrors "errors"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/internal/utils"
)

// Claims is the verified identity carried by a bearer token.
type Claims struct {
	Subject string         // "sub", the principal name
	Email   string         // "email", when present
	Roles   []string       // "roles", the granted authorities
	Scope   string         // "scope", space-separated OAuth2 scopes
	All     jwtlib.MapClaims
}

// Name implements the principal-name contract used by the token layer.
func (c *Claims) Name() string { return c.Subject }

// Provider validates JWT bearer tokens with a verification key.
type Provider struct {
	keyFunc  jwtlib.Keyfunc
	issuer   string
	audience string
}

var _ authn.Provider = (*Provider)(nil)

// Option modifies a Provider at construction time.
type Option func(*Provider)

// WithIssuer requires the "iss" claim to match.
func WithIssuer(issuer string) Option {
	return func(p *Provider) {
		p.issuer = issuer
	}
}

// WithAudience requires the "aud" claim to contain the audience.
func WithAudience(audience string) Option {
	return func(p *Provider) {
		p.audience = audience
	}
}

// New creates a bearer-token provider. keyFunc resolves the verification
// key for a parsed token, in the golang-jwt style.
func New(keyFunc jwtlib.Keyfunc, options ...Option) (*Provider, error) {
	if keyFunc == nil {
		return nil, errors.New("[jwtbearer.New] key function is required")
	}
	p := &Provider{keyFunc: keyFunc}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

// Supports implements authn.Provider.
func (p *Provider) Supports(kind string) bool {
	return kind == authn.KindBearer
}

// Authenticate implements authn.Provider.
func (p *Provider) Authenticate(_ context.Context, token *authn.Token) (*authn.Token, error) {
	rawToken, ok := token.Credentials().(string)
	if !ok || strings.TrimSpace(rawToken) == "" {
		return nil, nil
	}

	parserOptions := []jwtlib.ParserOption{jwtlib.WithExpirationRequired()}
	if p.issuer != "" {
		parserOptions = append(parserOptions, jwtlib.WithIssuer(p.issuer))
	}
	if p.audience != "" {
		parserOptions = append(parserOptions, jwtlib.WithAudience(p.audience))
	}

	parsed, err := jwtlib.ParseWithClaims(rawToken, jwtlib.MapClaims{}, p.keyFunc, parserOptions...)
	if err != nil {
		if stderrors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, errors.Wrap(authn.ErrCredentialsExpired, "[jwtbearer.Authenticate] token expired")
		}
		return nil, errors.Wrap(authn.ErrBadCredentials, err.Error())
	}
	if !parsed.Valid {
		return nil, errors.Wrap(authn.ErrBadCredentials, "[jwtbearer.Authenticate] invalid token")
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrap(authn.ErrBadCredentials, "[jwtbearer.Authenticate] error extracting claims")
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, errors.Wrap(authn.ErrBadCredentials, "[jwtbearer.Authenticate] missing sub claim")
	}

	claims := &Claims{
		Subject: sub,
		All:     mapClaims,
	}
	claims.Email, _ = mapClaims["email"].(string)
	claims.Scope, _ = mapClaims["scope"].(string)
	if rawRoles, ok := mapClaims["roles"].([]any); ok {
		claims.Roles = utils.ToStringSlice(rawRoles)
	}

	authorities := append([]string(nil), claims.Roles...)
	for _, scope := range strings.Fields(claims.Scope) {
		authorities = append(authorities, "scope:"+scope)
	}

	return authn.NewAuthenticatedToken(authn.KindBearer, claims, rawToken, authorities), nil
}
