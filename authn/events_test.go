package authn_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFailureEventKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		kind authn.EventKind
	}{
		{authn.ErrBadCredentials, authn.EventBadCredentials},
		{authn.ErrUsernameNotFound, authn.EventUsernameNotFound},
		{authn.ErrAccountExpired, authn.EventAccountExpired},
		{authn.ErrAccountLocked, authn.EventAccountLocked},
		{authn.ErrCredentialsExpired, authn.EventCredentialsExpired},
		{authn.ErrDisabled, authn.EventDisabled},
		{authn.ErrServiceUnavailable, authn.EventServiceUnavailable},
		{authn.ErrProviderNotFound, authn.EventProviderNotFound},
		{authn.ErrConcurrentLogin, authn.EventConcurrentLogin},
		{errors.New("something else entirely"), authn.EventFailure},
	}

	for _, c := range cases {
		t.Run(string(c.kind), func(t *testing.T) {
			require.Equal(t, c.kind, authn.FailureEventKind(c.err))

			// The mapping is a static table: mapping the same error twice
			// yields the same kind, wrapped or not.
			wrapped := errors.Wrap(c.err, "[test] extra context")
			require.Equal(t, c.kind, authn.FailureEventKind(wrapped))
			require.Equal(t, authn.FailureEventKind(c.err), authn.FailureEventKind(c.err))
		})
	}
}

func TestSessionRegistry(t *testing.T) {
	registry := authn.NewSessionRegistry(2)
	token := authn.NewAuthenticatedToken(authn.KindUsernamePassword, "jane@example.com", nil, nil)

	require.NoError(t, registry.Admit(token))
	require.NoError(t, registry.Admit(token))
	require.ErrorIs(t, registry.Admit(token), authn.ErrConcurrentLogin)
	require.Equal(t, 2, registry.Sessions("jane@example.com"))

	registry.Release("jane@example.com")
	require.NoError(t, registry.Admit(token))
}

func TestSessionRegistryUnlimited(t *testing.T) {
	registry := authn.NewSessionRegistry(0)
	token := authn.NewAuthenticatedToken(authn.KindUsernamePassword, "jane@example.com", nil, nil)

	for i := 0; i < 100; i++ {
		require.NoError(t, registry.Admit(token))
	}
}
