// Package password implements the username/password authentication
// provider backed by a user repository.
package password

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/users"
)

// Encoder is the pluggable password-encoding capability. Implementations
// compare a raw password against its stored encoded form.
type Encoder interface {
	Matches(rawPassword, encodedPassword string) bool
}

// BcryptEncoder is the default Encoder.
type BcryptEncoder struct{}

// Matches implements Encoder using bcrypt comparison.
func (BcryptEncoder) Matches(rawPassword, encodedPassword string) bool {
	return users.CheckPasswordHash(rawPassword, encodedPassword)
}

// Provider authenticates username/password tokens against a user
// repository.
//
// Account status is checked before the password, in a fixed order: locked,
// disabled, account expired, password, credentials expired. An unknown
// username surfaces as bad credentials unless the reveal policy is turned
// on, so callers cannot probe which accounts exist.
type Provider struct {
	repo               users.UserRepo
	encoder            Encoder
	revealUserNotFound bool
	nowTime            func() time.Time
}

var _ authn.Provider = (*Provider)(nil)

// Option modifies a Provider at construction time.
type Option func(*Provider)

// WithEncoder replaces the default bcrypt encoder.
func WithEncoder(encoder Encoder) Option {
	return func(p *Provider) {
		p.encoder = encoder
	}
}

// WithRevealUserNotFound turns off the anti-enumeration default: an
// unknown username then fails with ErrUsernameNotFound instead of
// ErrBadCredentials.
func WithRevealUserNotFound() Option {
	return func(p *Provider) {
		p.revealUserNotFound = true
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(p *Provider) {
		p.nowTime = nowFunc
	}
}

// New creates a username/password provider over the given repository.
func New(repo users.UserRepo, options ...Option) (*Provider, error) {
	if repo == nil {
		return nil, errors.New("[password.New] user repo is required")
	}
	p := &Provider{
		repo:    repo,
		encoder: BcryptEncoder{},
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

// Supports implements authn.Provider.
func (p *Provider) Supports(kind string) bool {
	return kind == authn.KindUsernamePassword
}

// Authenticate implements authn.Provider.
func (p *Provider) Authenticate(_ context.Context, token *authn.Token) (*authn.Token, error) {
	email, ok := token.Principal().(string)
	if !ok || email == "" {
		return nil, nil
	}
	rawPassword, _ := token.Credentials().(string)

	user, err := p.repo.GetByEmail(email)
	if err != nil {
		if stderrors.Is(err, users.ErrNotFound) {
			if p.revealUserNotFound {
				return nil, errors.Wrapf(authn.ErrUsernameNotFound, "[password.Authenticate] %q", email)
			}
			return nil, errors.Wrap(authn.ErrBadCredentials, "[password.Authenticate] user lookup")
		}
		return nil, errors.Wrap(authn.ErrServiceUnavailable, err.Error())
	}

	now := p.nowTime()
	switch {
	case user.Blocked:
		return nil, errors.Wrapf(authn.ErrAccountLocked, "[password.Authenticate] %q", email)
	case !user.Verified:
		return nil, errors.Wrapf(authn.ErrDisabled, "[password.Authenticate] %q", email)
	case user.AccountExpired(now):
		return nil, errors.Wrapf(authn.ErrAccountExpired, "[password.Authenticate] %q", email)
	}

	if !p.encoder.Matches(rawPassword, user.PasswordHash) {
		return nil, errors.Wrap(authn.ErrBadCredentials, "[password.Authenticate] password mismatch")
	}

	if user.CredentialsExpired(now) {
		return nil, errors.Wrapf(authn.ErrCredentialsExpired, "[password.Authenticate] %q", email)
	}

	return authn.NewAuthenticatedToken(authn.KindUsernamePassword, user, rawPassword, user.Authorities()), nil
}
