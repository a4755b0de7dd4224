package requestrepo_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-middleware/oauth2login"
	"github.com/jrsteele09/go-auth-middleware/oauth2login/requestrepo"
)

func storedRequest(state string) *oauth2login.AuthorizationRequest {
	return &oauth2login.AuthorizationRequest{
		RegistrationID:   "acme",
		AuthorizationURI: "https://idp.example.com/authorize",
		ClientID:         "acme-client",
		RedirectURI:      "https://app.example.com/login/oauth2/code/acme",
		Scopes:           []string{"openid", "profile"},
		State:            state,
		ResponseType:     "code",
	}
}

func TestSaveLoadRemove(t *testing.T) {
	repo := requestrepo.NewInMemoryRepo()
	require.NoError(t, repo.Save(storedRequest("s1")))

	loaded, err := repo.Load("s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, "acme", loaded.RegistrationID)

	removed, err := repo.Remove("s1")
	require.NoError(t, err)
	require.NotNil(t, removed)
	require.Equal(t, "s1", removed.State)
}

func TestReplayOfConsumedStateFails(t *testing.T) {
	repo := requestrepo.NewInMemoryRepo()
	require.NoError(t, repo.Save(storedRequest("s1")))

	first, err := repo.Remove("s1")
	require.NoError(t, err)
	require.NotNil(t, first)

	// The same state can never be consumed twice.
	second, err := repo.Remove("s1")
	require.NoError(t, err)
	require.Nil(t, second)

	loaded, err := repo.Load("s1")
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestConcurrentCallbacksConsumeAtMostOnce(t *testing.T) {
	repo := requestrepo.NewInMemoryRepo()
	require.NoError(t, repo.Save(storedRequest("s1")))

	const callbacks = 32
	var wg sync.WaitGroup
	consumed := make(chan *oauth2login.AuthorizationRequest, callbacks)

	for i := 0; i < callbacks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			request, err := repo.Remove("s1")
			require.NoError(t, err)
			if request != nil {
				consumed <- request
			}
		}()
	}
	wg.Wait()
	close(consumed)

	require.Len(t, consumed, 1, "exactly one callback may consume the stored request")
}

func TestSaveRejectsEmptyState(t *testing.T) {
	repo := requestrepo.NewInMemoryRepo()
	require.Error(t, repo.Save(storedRequest("")))
	require.Error(t, repo.Save(nil))
}

func TestUnknownStateIsEmptyNotError(t *testing.T) {
	repo := requestrepo.NewInMemoryRepo()

	loaded, err := repo.Load("missing")
	require.NoError(t, err)
	require.Nil(t, loaded)

	removed, err := repo.Remove("missing")
	require.NoError(t, err)
	require.Nil(t, removed)
}
