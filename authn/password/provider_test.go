package password_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/authn/password"
	"github.com/jrsteele09/go-auth-middleware/users"
	fakeuserrepo "github.com/jrsteele09/go-auth-middleware/users/repofake"
)

const (
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "Password123"
)

func setupRepo(t *testing.T, mutate func(*users.User)) *fakeuserrepo.FakeUserRepo {
	t.Helper()

	passwordHash, err := users.HashPassword(testUserPassword)
	require.NoError(t, err)

	user := &users.User{
		ID:           "user-1",
		Email:        testUserEmail,
		Username:     "johndoe",
		PasswordHash: passwordHash,
		Roles:        []users.RoleType{users.RoleUser, users.RoleViewer},
		Verified:     true,
	}
	if mutate != nil {
		mutate(user)
	}

	repo := fakeuserrepo.NewFakeUserRepo()
	require.NoError(t, repo.Upsert(user))
	return repo
}

func loginToken(email, pass string) *authn.Token {
	return authn.NewToken(authn.KindUsernamePassword, email, pass)
}

func TestSuccessfulLogin(t *testing.T) {
	provider, err := password.New(setupRepo(t, nil))
	require.NoError(t, err)

	result, err := provider.Authenticate(context.Background(), loginToken(testUserEmail, testUserPassword))
	require.NoError(t, err)
	require.True(t, result.Authenticated())
	require.Equal(t, []string{"user", "viewer"}, result.Authorities())

	user, ok := result.Principal().(*users.User)
	require.True(t, ok)
	require.Equal(t, testUserEmail, user.Email)
}

func TestHiddenUsernameEnumeration(t *testing.T) {
	t.Run("default policy hides user-not-found", func(t *testing.T) {
		provider, err := password.New(setupRepo(t, nil))
		require.NoError(t, err)

		_, wrongPassErr := provider.Authenticate(context.Background(), loginToken(testUserEmail, "wrong-password"))
		_, unknownUserErr := provider.Authenticate(context.Background(), loginToken("nobody@example.com", testUserPassword))

		// Wrong password and unknown user must be indistinguishable.
		require.ErrorIs(t, wrongPassErr, authn.ErrBadCredentials)
		require.ErrorIs(t, unknownUserErr, authn.ErrBadCredentials)
		require.NotErrorIs(t, unknownUserErr, authn.ErrUsernameNotFound)
	})

	t.Run("reveal policy distinguishes them", func(t *testing.T) {
		provider, err := password.New(setupRepo(t, nil), password.WithRevealUserNotFound())
		require.NoError(t, err)

		_, wrongPassErr := provider.Authenticate(context.Background(), loginToken(testUserEmail, "wrong-password"))
		_, unknownUserErr := provider.Authenticate(context.Background(), loginToken("nobody@example.com", testUserPassword))

		require.ErrorIs(t, wrongPassErr, authn.ErrBadCredentials)
		require.ErrorIs(t, unknownUserErr, authn.ErrUsernameNotFound)
	})
}

func TestAccountStatusFailures(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		mutate  func(*users.User)
		wantErr error
	}{
		{"blocked account is locked", func(u *users.User) { u.Blocked = true }, authn.ErrAccountLocked},
		{"unverified account is disabled", func(u *users.User) { u.Verified = false }, authn.ErrDisabled},
		{"expired account", func(u *users.User) { u.AccountExpiresAt = now.Add(-time.Hour) }, authn.ErrAccountExpired},
		{"expired password", func(u *users.User) { u.PasswordExpiresAt = now.Add(-time.Hour) }, authn.ErrCredentialsExpired},
		{"forced password change", func(u *users.User) { u.PasswordChangeRequired = true }, authn.ErrCredentialsExpired},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			provider, err := password.New(setupRepo(t, c.mutate), password.WithNowTime(func() time.Time { return now }))
			require.NoError(t, err)

			_, err = provider.Authenticate(context.Background(), loginToken(testUserEmail, testUserPassword))
			require.ErrorIs(t, err, c.wantErr)
		})
	}
}

func TestLockedCheckedBeforePassword(t *testing.T) {
	provider, err := password.New(setupRepo(t, func(u *users.User) { u.Blocked = true }))
	require.NoError(t, err)

	// Even with a wrong password the lock wins: status is checked first.
	_, err = provider.Authenticate(context.Background(), loginToken(testUserEmail, "wrong-password"))
	require.ErrorIs(t, err, authn.ErrAccountLocked)
}

func TestBackendFailureIsServiceUnavailable(t *testing.T) {
	repo := setupRepo(t, nil)
	repo.GetByEmailErr = errors.New("connection refused")

	provider, err := password.New(repo)
	require.NoError(t, err)

	_, err = provider.Authenticate(context.Background(), loginToken(testUserEmail, testUserPassword))
	require.ErrorIs(t, err, authn.ErrServiceUnavailable)
	require.NotErrorIs(t, err, authn.ErrBadCredentials)
}

func TestNonStringPrincipalIsDeclined(t *testing.T) {
	provider, err := password.New(setupRepo(t, nil))
	require.NoError(t, err)

	result, err := provider.Authenticate(context.Background(), authn.NewToken(authn.KindUsernamePassword, 42, "x"))
	require.NoError(t, err)
	require.Nil(t, result)
}
