package registrations_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-middleware/registrations"
)

func validRegistration() registrations.Registration {
	return registrations.Registration{
		ID:               "acme",
		ClientID:         "acme-client",
		ClientSecret:     "acme-secret",
		AuthMethod:       registrations.ClientAuthBasic,
		RedirectURI:      "{baseUrl}/login/oauth2/code/{registrationId}",
		Scopes:           []string{"openid", "profile"},
		AuthorizationURI: "https://idp.example.com/authorize",
		TokenURI:         "https://idp.example.com/token",
		UserInfoURI:      "https://idp.example.com/userinfo",
		UserNameAttr:     "sub",
	}
}

func TestExpandRedirectURI(t *testing.T) {
	reg := validRegistration()
	require.True(t, reg.IsTemplated())

	concrete := reg.ExpandRedirectURI("https://app.example.com")
	require.Equal(t, "https://app.example.com/login/oauth2/code/acme", concrete)

	// The working copy carries the concrete URI, the original keeps the
	// template.
	working := reg.WithRedirectURI(concrete)
	require.False(t, working.IsTemplated())
	require.True(t, reg.IsTemplated())
}

func TestExpandRedirectURIWithoutTemplate(t *testing.T) {
	reg := validRegistration()
	reg.RedirectURI = "https://app.example.com/cb"

	require.False(t, reg.IsTemplated())
	require.Equal(t, "https://app.example.com/cb", reg.ExpandRedirectURI("https://other.example.com"))
}

func TestValidate(t *testing.T) {
	require.NoError(t, validRegistration().Validate())

	broken := validRegistration()
	broken.TokenURI = ""
	require.ErrorIs(t, broken.Validate(), registrations.ErrInvalidConfig)

	badMethod := validRegistration()
	badMethod.AuthMethod = "client_secret_jwt"
	require.ErrorIs(t, badMethod.Validate(), registrations.ErrInvalidConfig)
}

func TestInMemoryRepo(t *testing.T) {
	repo := registrations.NewInMemoryRepo()
	reg := validRegistration()
	require.NoError(t, repo.Upsert(&reg))

	loaded, err := repo.Get("acme")
	require.NoError(t, err)
	require.Equal(t, reg, *loaded)

	// Mutating the loaded copy must not affect the stored registration.
	loaded.ClientSecret = "changed"
	again, err := repo.Get("acme")
	require.NoError(t, err)
	require.Equal(t, "acme-secret", again.ClientSecret)

	_, err = repo.Get("unknown")
	require.ErrorIs(t, err, registrations.ErrNotFound)

	require.NoError(t, repo.Delete("acme"))
	_, err = repo.Get("acme")
	require.ErrorIs(t, err, registrations.ErrNotFound)
}
