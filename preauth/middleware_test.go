package preauth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/preauth"
)

const identityHeader = "X-Forwarded-User"

type stubAuthenticator struct {
	result *authn.Token
	err    error
	calls  int
}

func (s *stubAuthenticator) Authenticate(_ context.Context, _ *authn.Token) (*authn.Token, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newAdapter(t *testing.T, authenticator authn.Authenticator, options ...preauth.AdapterOption) *preauth.Adapter {
	t.Helper()
	adapter, err := preauth.NewAdapter(authenticator, preauth.HeaderPrincipal(identityHeader), options...)
	require.NoError(t, err)
	return adapter
}

// serve runs a request through the adapter with a fresh security context
// installed, the way the server's entry middleware would.
func serve(adapter *preauth.Adapter, r *http.Request) (*httptest.ResponseRecorder, *authn.SecurityContext, bool) {
	sc := authn.NewSecurityContext()
	r = r.WithContext(authn.WithSecurityContext(r.Context(), sc))

	reached := false
	recorder := httptest.NewRecorder()
	adapter.Middleware(func(http.ResponseWriter, *http.Request) {
		reached = true
	})(recorder, r)
	return recorder, sc, reached
}

func TestAbsentPrincipalPassesThrough(t *testing.T) {
	authenticator := &stubAuthenticator{}
	adapter := newAdapter(t, authenticator)

	_, sc, reached := serve(adapter, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	require.True(t, reached, "a request without the identity header is not this mechanism's business")
	require.Zero(t, authenticator.calls)
	require.Nil(t, sc.Token())
}

func TestExtractedPrincipalIsAuthenticatedAndInstalled(t *testing.T) {
	result := authn.NewAuthenticatedToken(authn.KindPreAuthenticated, "john.doe@example.com", nil, []string{"user"})
	authenticator := &stubAuthenticator{result: result}
	adapter := newAdapter(t, authenticator)

	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.Header.Set(identityHeader, "john.doe@example.com")

	_, sc, reached := serve(adapter, r)
	require.True(t, reached)
	require.Equal(t, 1, authenticator.calls)
	require.Same(t, result, sc.Token())
}

func TestFailureRejectsByDefault(t *testing.T) {
	authenticator := &stubAuthenticator{err: authn.ErrBadCredentials}
	adapter := newAdapter(t, authenticator)

	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.Header.Set(identityHeader, "stranger@example.com")

	recorder, sc, reached := serve(adapter, r)
	require.False(t, reached)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.Nil(t, sc.Token(), "failed pre-authentication must leave no partial state")
}

func TestAccountStatusFailureIsForbidden(t *testing.T) {
	authenticator := &stubAuthenticator{err: authn.ErrAccountLocked}
	adapter := newAdapter(t, authenticator)

	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.Header.Set(identityHeader, "locked@example.com")

	recorder, _, reached := serve(adapter, r)
	require.False(t, reached)
	require.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestContinueOnFailureLetsTheChainProceed(t *testing.T) {
	authenticator := &stubAuthenticator{err: authn.ErrBadCredentials}
	adapter := newAdapter(t, authenticator, preauth.WithContinueOnFailure())

	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.Header.Set(identityHeader, "stranger@example.com")

	recorder, sc, reached := serve(adapter, r)
	require.True(t, reached, "another mechanism later in the pipeline may still authenticate")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Nil(t, sc.Token())
}

func TestAlreadyAuthenticatedRequestIsLeftAlone(t *testing.T) {
	authenticator := &stubAuthenticator{}
	adapter := newAdapter(t, authenticator)

	existing := authn.NewAuthenticatedToken(authn.KindBearer, "api-client", nil, nil)
	sc := authn.NewSecurityContext()
	sc.SetToken(existing)

	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.Header.Set(identityHeader, "john.doe@example.com")
	r = r.WithContext(authn.WithSecurityContext(r.Context(), sc))

	reached := false
	adapter.Middleware(func(http.ResponseWriter, *http.Request) {
		reached = true
	})(httptest.NewRecorder(), r)

	require.True(t, reached)
	require.Zero(t, authenticator.calls)
	require.Same(t, existing, sc.Token())
}

func TestCredentialsExtractorFeedsTheToken(t *testing.T) {
	var seen *authn.Token
	authenticator := authenticatorFunc(func(_ context.Context, token *authn.Token) (*authn.Token, error) {
		seen = token
		return authn.NewAuthenticatedToken(authn.KindPreAuthenticated, token.Principal(), nil, nil), nil
	})
	adapter, err := preauth.NewAdapter(authenticator, preauth.HeaderPrincipal(identityHeader),
		preauth.WithCredentialsExtractor(preauth.HeaderCredentials("X-Forwarded-Credentials")))
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.Header.Set(identityHeader, "john.doe@example.com")
	r.Header.Set("X-Forwarded-Credentials", "proxy-secret")

	_, _, reached := serve(adapter, r)
	require.True(t, reached)
	require.Equal(t, "john.doe@example.com", seen.Principal())
	require.Equal(t, "proxy-secret", seen.Credentials())
}

type authenticatorFunc func(ctx context.Context, token *authn.Token) (*authn.Token, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, token *authn.Token) (*authn.Token, error) {
	return f(ctx, token)
}
