package authn

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ProviderManager dispatches a credential token across an ordered list of
// providers. The first provider to produce a result wins; provider order is
// caller-defined and significant.
//
// Chain protocol:
//   - providers that do not support the token kind are skipped
//   - a nil result means "cannot decide", the next provider is tried
//   - an account-status failure (locked, disabled, expired, concurrent
//     login) stops the chain immediately and is final
//   - any other failure is remembered as the last error and the chain
//     continues
//   - when no provider decided, an optional parent Authenticator gets the
//     token; a provider-not-found error from the parent is ignored so the
//     chain's own recorded error is preferred
//   - a successful result passes session admission control before the
//     success event is published; an admission denial overrides success
type ProviderManager struct {
	providers        []Provider
	parent           Authenticator
	publisher        Publisher
	admission        SessionAdmission
	admissionKinds   map[string]bool
	eraseCredentials bool
}

var _ Authenticator = (*ProviderManager)(nil)

// ProviderManagerOption modifies a ProviderManager at construction time.
type ProviderManagerOption func(*ProviderManager)

// WithParent sets a fallback Authenticator consulted when no provider in
// this manager produces a result.
func WithParent(parent Authenticator) ProviderManagerOption {
	return func(pm *ProviderManager) {
		pm.parent = parent
	}
}

// WithPublisher sets the event sink for success/failure outcomes. Without
// it, outcomes are not published.
func WithPublisher(publisher Publisher) ProviderManagerOption {
	return func(pm *ProviderManager) {
		pm.publisher = publisher
	}
}

// WithSessionAdmission enables concurrent-session admission control on
// successful authentications. When kinds are given, only tokens of those
// kinds register a session: per-request credential validation (bearer
// tokens) establishes no session and must not consume a session slot.
// Without kinds, every successful authentication is admitted.
func WithSessionAdmission(admission SessionAdmission, kinds ...string) ProviderManagerOption {
	return func(pm *ProviderManager) {
		pm.admission = admission
		pm.admissionKinds = make(map[string]bool, len(kinds))
		for _, kind := range kinds {
			pm.admissionKinds[kind] = true
		}
	}
}

// WithoutCredentialsErasure keeps credentials on the result token after a
// successful authentication. By default they are erased.
func WithoutCredentialsErasure() ProviderManagerOption {
	return func(pm *ProviderManager) {
		pm.eraseCredentials = false
	}
}

// NewProviderManager creates a chain dispatcher over the given providers.
// An empty provider list without a parent is a configuration error.
func NewProviderManager(providers []Provider, options ...ProviderManagerOption) (*ProviderManager, error) {
	pm := &ProviderManager{
		providers:        append([]Provider(nil), providers...),
		eraseCredentials: true,
	}
	for _, opt := range options {
		opt(pm)
	}
	if len(pm.providers) == 0 && pm.parent == nil {
		return nil, errors.New("[NewProviderManager] at least one provider or a parent is required")
	}
	return pm, nil
}

// Authenticate implements the chain protocol described on ProviderManager.
func (pm *ProviderManager) Authenticate(ctx context.Context, token *Token) (*Token, error) {
	var result *Token
	var lastErr error

	for _, provider := range pm.providers {
		if !provider.Supports(token.Kind()) {
			continue
		}

		authenticated, err := provider.Authenticate(ctx, token)
		if err != nil {
			if IsAccountStatus(err) {
				// Terminal: no further providers, no parent.
				return nil, pm.failed(token, err)
			}
			lastErr = err
			continue
		}
		if authenticated != nil {
			result = authenticated
			break
		}
	}

	if result == nil && pm.parent != nil {
		parentResult, err := pm.parent.Authenticate(ctx, token)
		switch {
		case errors.Is(err, ErrProviderNotFound):
			// The parent not knowing the token kind is not news; keep the
			// chain's own error if one was recorded.
		case err != nil:
			lastErr = err
		default:
			result = parentResult
		}
	}

	if result != nil {
		if result.Details() == nil && token.Details() != nil {
			result.SetDetails(token.Details())
		}
		if pm.admission != nil && pm.admitsKind(result.Kind()) {
			if err := pm.admission.Admit(result); err != nil {
				return nil, pm.failed(token, err)
			}
		}
		if pm.eraseCredentials {
			result.EraseCredentials()
		}
		publish(pm.publisher, newEvent(EventSuccess, result, nil))
		return result, nil
	}

	if lastErr == nil {
		lastErr = errors.Wrapf(ErrProviderNotFound, "[ProviderManager.Authenticate] token kind %q", token.Kind())
	}
	return nil, pm.failed(token, lastErr)
}

func (pm *ProviderManager) admitsKind(kind string) bool {
	return len(pm.admissionKinds) == 0 || pm.admissionKinds[kind]
}

func (pm *ProviderManager) failed(token *Token, err error) error {
	log.Debug().Str("kind", token.Kind()).Err(err).Msg("authentication failed")
	publish(pm.publisher, newEvent(FailureEventKind(err), token, err))
	return err
}
