package tokenstore

import (
	"sync"

	"github.com/pkg/errors"
)

var _ Store = (*InMemoryStore)(nil)

type clientKey struct {
	registrationID string
	principal      string
}

// InMemoryStore is a thread-safe in-memory implementation of the Store
// interface.
type InMemoryStore struct {
	lock    sync.RWMutex
	clients map[clientKey]AuthorizedClient
}

// NewInMemoryStore creates a new in-memory authorized client store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		clients: make(map[clientKey]AuthorizedClient),
	}
}

// Upsert stores or replaces the authorized client for its
// (registration, principal) pair. The last writer wins.
func (s *InMemoryStore) Upsert(client *AuthorizedClient) error {
	if client == nil {
		return errors.New("authorized client cannot be nil")
	}
	if client.RegistrationID == "" || client.Principal == "" {
		return errors.New("[InMemoryStore.Upsert] registration ID and principal are required")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	// Store a copy to prevent external modifications
	s.clients[clientKey{client.RegistrationID, client.Principal}] = *client
	return nil
}

// Get retrieves the authorized client for a (registration, principal)
// pair.
func (s *InMemoryStore) Get(registrationID, principal string) (*AuthorizedClient, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	client, ok := s.clients[clientKey{registrationID, principal}]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "[InMemoryStore.Get] %q/%q", registrationID, principal)
	}

	// Return a copy to prevent external modifications
	out := client
	return &out, nil
}

// Delete removes the authorized client for a (registration, principal)
// pair. Deleting an absent client is not an error.
func (s *InMemoryStore) Delete(registrationID, principal string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.clients, clientKey{registrationID, principal})
	return nil
}

// DeleteForPrincipal removes every authorized client held by a
// principal, across all registrations. Used at logout.
func (s *InMemoryStore) DeleteForPrincipal(principal string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	for key := range s.clients {
		if key.principal == principal {
			delete(s.clients, key)
		}
	}
	return nil
}
