// Package tokenstore keeps the access tokens granted to authenticated
// principals, keyed by client registration and principal name. It is the
// bookkeeping behind "which provider tokens does this user currently
// hold", consulted after login and evicted at logout.
package tokenstore

import (
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-middleware/oauth2login"
)

// ErrNotFound is returned when no client is stored for a key.
var ErrNotFound = errors.New("authorized client not found")

// AuthorizedClient associates a principal with the tokens granted by one
// client registration.
type AuthorizedClient struct {
	RegistrationID string
	Principal      string
	AccessToken    oauth2login.AccessToken
	RefreshToken   string
}

// Store holds authorized clients. A second save for the same
// (registration, principal) pair replaces the first.
type Store interface {
	Upsert(client *AuthorizedClient) error
	Get(registrationID, principal string) (*AuthorizedClient, error)
	Delete(registrationID, principal string) error
	DeleteForPrincipal(principal string) error
}
