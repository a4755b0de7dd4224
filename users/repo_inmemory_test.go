package users_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-middleware/users"
)

func newRepoWithUser(t *testing.T, email string) *users.InMemoryRepo {
	t.Helper()
	repo := users.NewInMemoryRepo()
	require.NoError(t, repo.Upsert(&users.User{
		Email:    email,
		Username: "jdoe",
		Verified: true,
		Roles:    []users.RoleType{users.RoleUser},
	}))
	return repo
}

func TestUpsertAssignsIDAndGetByEmail(t *testing.T) {
	repo := users.NewInMemoryRepo()

	user := &users.User{Email: "john.doe@example.com", Verified: true}
	require.NoError(t, repo.Upsert(user))
	require.NotEmpty(t, user.ID)

	found, err := repo.GetByEmail("john.doe@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	byID, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	require.Equal(t, "john.doe@example.com", byID.Email)
}

func TestUpsertRequiresEmail(t *testing.T) {
	repo := users.NewInMemoryRepo()
	require.Error(t, repo.Upsert(&users.User{}))
	require.Error(t, repo.Upsert(nil))
}

func TestGetByEmailReturnsACopy(t *testing.T) {
	repo := newRepoWithUser(t, "john.doe@example.com")

	found, err := repo.GetByEmail("john.doe@example.com")
	require.NoError(t, err)
	found.Blocked = true

	again, err := repo.GetByEmail("john.doe@example.com")
	require.NoError(t, err)
	require.False(t, again.Blocked, "mutating a returned user must not touch the stored one")
}

func TestUnknownUserIsNotFound(t *testing.T) {
	repo := users.NewInMemoryRepo()

	_, err := repo.GetByEmail("nobody@example.com")
	require.ErrorIs(t, err, users.ErrNotFound)

	_, err = repo.GetByID("missing-id")
	require.ErrorIs(t, err, users.ErrNotFound)

	require.ErrorIs(t, repo.Delete("nobody@example.com"), users.ErrNotFound)
	require.ErrorIs(t, repo.SetBlocked("nobody@example.com", true), users.ErrNotFound)
}

func TestDeleteRemovesBothIndexes(t *testing.T) {
	repo := newRepoWithUser(t, "john.doe@example.com")

	found, err := repo.GetByEmail("john.doe@example.com")
	require.NoError(t, err)

	require.NoError(t, repo.Delete("john.doe@example.com"))

	_, err = repo.GetByEmail("john.doe@example.com")
	require.ErrorIs(t, err, users.ErrNotFound)
	_, err = repo.GetByID(found.ID)
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestSetBlockedAndSetVerified(t *testing.T) {
	repo := newRepoWithUser(t, "john.doe@example.com")

	require.NoError(t, repo.SetBlocked("john.doe@example.com", true))
	require.NoError(t, repo.SetVerified("john.doe@example.com", false))

	found, err := repo.GetByEmail("john.doe@example.com")
	require.NoError(t, err)
	require.True(t, found.Blocked)
	require.False(t, found.Verified)
}

func TestListWindows(t *testing.T) {
	repo := users.NewInMemoryRepo()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Upsert(&users.User{ID: id, Email: id + "@example.com"}))
	}

	all, err := repo.List(0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "a", all[0].ID)

	window, err := repo.List(1, 1)
	require.NoError(t, err)
	require.Len(t, window, 1)
	require.Equal(t, "b", window[0].ID)

	past, err := repo.List(5, 1)
	require.NoError(t, err)
	require.Empty(t, past)
}
