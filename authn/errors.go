package authn

import "errors"

// Authentication failure taxonomy. Providers return these (usually wrapped
// with context via pkg/errors) so the dispatcher and HTTP layer can decide
// on chain short-circuiting, status codes and event kinds with errors.Is.
var (
	// ErrBadCredentials means the presented secret was wrong. Recoverable
	// by retrying with the correct input. With the default hide-not-found
	// policy it is also what an unknown username surfaces as.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrUsernameNotFound means no account exists for the presented
	// principal. Only surfaced when a provider is configured to reveal it;
	// the default policy aliases it to ErrBadCredentials to prevent
	// username enumeration.
	ErrUsernameNotFound = errors.New("username not found")

	// ErrAccountExpired, ErrAccountLocked, ErrCredentialsExpired and
	// ErrDisabled are account-status failures. They terminate the provider
	// chain immediately: no further provider is consulted.
	ErrAccountExpired     = errors.New("account expired")
	ErrAccountLocked      = errors.New("account locked")
	ErrCredentialsExpired = errors.New("credentials expired")
	ErrDisabled           = errors.New("account disabled")

	// ErrServiceUnavailable means a backing service (user store, token
	// endpoint) could not be reached. Distinct from bad credentials: it
	// signals "try again later", not "your input was wrong".
	ErrServiceUnavailable = errors.New("authentication service unavailable")

	// ErrProviderNotFound means no provider in the chain supports the
	// presented token kind. A configuration/routing problem, not a
	// credential problem.
	ErrProviderNotFound = errors.New("no authentication provider found")

	// ErrConcurrentLogin is an admission-control denial: the principal has
	// too many concurrent sessions. Terminal, and it overrides an otherwise
	// successful authentication.
	ErrConcurrentLogin = errors.New("maximum concurrent sessions exceeded")
)

// IsAccountStatus reports whether err is one of the account-status
// failures that must stop the provider chain immediately.
func IsAccountStatus(err error) bool {
	return errors.Is(err, ErrAccountExpired) ||
		errors.Is(err, ErrAccountLocked) ||
		errors.Is(err, ErrCredentialsExpired) ||
		errors.Is(err, ErrDisabled) ||
		errors.Is(err, ErrConcurrentLogin)
}
