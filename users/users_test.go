package users_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-middleware/users"
)

func TestAccountExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	user := users.User{}
	require.False(t, user.AccountExpired(now))

	user.AccountExpiresAt = now.Add(-time.Hour)
	require.True(t, user.AccountExpired(now))

	user.AccountExpiresAt = now.Add(time.Hour)
	require.False(t, user.AccountExpired(now))
}

func TestCredentialsExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	user := users.User{}
	require.False(t, user.CredentialsExpired(now))

	user.PasswordChangeRequired = true
	require.True(t, user.CredentialsExpired(now))

	user.PasswordChangeRequired = false
	user.PasswordExpiresAt = now.Add(-time.Minute)
	require.True(t, user.CredentialsExpired(now))
}

func TestAuthoritiesFromRoles(t *testing.T) {
	user := users.User{Roles: []users.RoleType{users.RoleAdmin, users.RoleViewer}}
	require.Equal(t, []string{"admin", "viewer"}, user.Authorities())
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := users.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("correct horse battery staple", hash))
	require.False(t, users.CheckPasswordHash("wrong password", hash))
}

func TestPasswordHashNeverSerialized(t *testing.T) {
	user := users.User{Email: "dev@example.com", PasswordHash: "secret-hash"}
	data, err := json.Marshal(user)
	require.NoError(t, err)
	require.NotContains(t, string(data), "secret-hash")
}
