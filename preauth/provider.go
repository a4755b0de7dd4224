// Package preauth adapts externally-established identities (a fronting
// proxy header, mutual TLS, an SSO gateway) into the authentication
// chain: the middleware extracts the principal from the request and a
// provider validates the account it names.
package preauth

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/users"
)

// Provider authenticates pre-authenticated tokens. The upstream system
// already proved the user's identity, so no credential check happens
// here; the account still has to exist and be in good standing.
type Provider struct {
	repo    users.UserRepo
	nowTime func() time.Time
}

var _ authn.Provider = (*Provider)(nil)

// Option modifies a Provider at construction time.
type Option func(*Provider)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(p *Provider) {
		p.nowTime = nowFunc
	}
}

// New creates a pre-authenticated provider over the given repository.
func New(repo users.UserRepo, options ...Option) (*Provider, error) {
	if repo == nil {
		return nil, errors.New("[preauth.New] user repo is required")
	}
	p := &Provider{
		repo:    repo,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

// Supports implements authn.Provider.
func (p *Provider) Supports(kind string) bool {
	return kind == authn.KindPreAuthenticated
}

// Authenticate implements authn.Provider.
func (p *Provider) Authenticate(_ context.Context, token *authn.Token) (*authn.Token, error) {
	email, ok := token.Principal().(string)
	if !ok || email == "" {
		return nil, nil
	}

	user, err := p.repo.GetByEmail(email)
	if err != nil {
		if stderrors.Is(err, users.ErrNotFound) {
			return nil, errors.Wrapf(authn.ErrUsernameNotFound, "[preauth.Authenticate] %q", email)
		}
		return nil, errors.Wrap(authn.ErrServiceUnavailable, err.Error())
	}

	now := p.nowTime()
	switch {
	case user.Blocked:
		return nil, errors.Wrapf(authn.ErrAccountLocked, "[preauth.Authenticate] %q", email)
	case !user.Verified:
		return nil, errors.Wrapf(authn.ErrDisabled, "[preauth.Authenticate] %q", email)
	case user.AccountExpired(now):
		return nil, errors.Wrapf(authn.ErrAccountExpired, "[preauth.Authenticate] %q", email)
	case user.CredentialsExpired(now):
		return nil, errors.Wrapf(authn.ErrCredentialsExpired, "[preauth.Authenticate] %q", email)
	}

	return authn.NewAuthenticatedToken(authn.KindPreAuthenticated, user, token.Credentials(), user.Authorities()), nil
}
