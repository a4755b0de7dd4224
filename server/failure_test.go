package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/oauth2login"
	"github.com/jrsteele09/go-auth-middleware/server"
)

func dispatch(err error) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	server.DefaultFailureDispatcher().Handle(recorder, httptest.NewRequest(http.MethodGet, "/api/orders", nil), err)
	return recorder
}

func TestAccountStatusFailuresAreForbidden(t *testing.T) {
	for _, err := range []error{
		authn.ErrAccountLocked,
		authn.ErrDisabled,
		authn.ErrAccountExpired,
		authn.ErrCredentialsExpired,
		authn.ErrConcurrentLogin,
	} {
		recorder := dispatch(errors.Wrap(err, "[test]"))
		require.Equal(t, http.StatusForbidden, recorder.Code, err.Error())
		require.Contains(t, recorder.Header().Get("WWW-Authenticate"), "access_denied")
	}
}

func TestOAuth2FailuresCarryTheirCode(t *testing.T) {
	err := oauth2login.NewError(oauth2login.ErrorCodeInvalidStateParameter, "state parameter does not match")
	recorder := dispatch(err)

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	challenge := recorder.Header().Get("WWW-Authenticate")
	require.Contains(t, challenge, `error="invalid_state_parameter"`)
	require.Contains(t, challenge, `error_description="state parameter does not match"`)
}

func TestOtherAuthenticationFailuresAreUnauthorized(t *testing.T) {
	for _, err := range []error{
		authn.ErrBadCredentials,
		authn.ErrProviderNotFound,
		authn.ErrServiceUnavailable,
	} {
		recorder := dispatch(err)
		require.Equal(t, http.StatusUnauthorized, recorder.Code, err.Error())
		require.Contains(t, recorder.Header().Get("WWW-Authenticate"), "invalid_token")
	}
}

func TestFirstMatchingDelegateWins(t *testing.T) {
	var order []string
	dispatcher := server.NewFailureDispatcher(func(w http.ResponseWriter, r *http.Request, err error) {
		order = append(order, "fallback")
	})
	dispatcher.Register(
		func(error) bool { order = append(order, "first"); return true },
		func(http.ResponseWriter, *http.Request, error) { order = append(order, "first-handled") },
	)
	dispatcher.Register(
		func(error) bool { order = append(order, "second"); return true },
		func(http.ResponseWriter, *http.Request, error) { order = append(order, "second-handled") },
	)

	dispatcher.Handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), authn.ErrBadCredentials)
	require.Equal(t, []string{"first", "first-handled"}, order,
		"delegates are evaluated sequentially and later ones never run after a match")
}

func TestFallbackHandlesUnmatchedFailures(t *testing.T) {
	handled := false
	dispatcher := server.NewFailureDispatcher(func(w http.ResponseWriter, r *http.Request, err error) {
		handled = true
	})
	dispatcher.Register(func(error) bool { return false }, func(http.ResponseWriter, *http.Request, error) {
		t.Fatal("non-matching delegate must not handle")
	})

	dispatcher.Handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), authn.ErrBadCredentials)
	require.True(t, handled)
}
