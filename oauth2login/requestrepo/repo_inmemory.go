// Package requestrepo provides the in-memory implementation of the
// authorization-request store used during an in-flight login round trip.
package requestrepo

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-middleware/oauth2login"
)

var _ oauth2login.RequestRepo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory authorization-request store
// keyed by state. Remove is a take-once slot: lookup and delete happen
// under one lock, so a state value can only ever be consumed once.
type InMemoryRepo struct {
	lock     sync.Mutex
	requests map[string]*oauth2login.AuthorizationRequest
}

// NewInMemoryRepo creates a new in-memory authorization request
// repository.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		requests: make(map[string]*oauth2login.AuthorizationRequest),
	}
}

// Save stores an authorization request keyed by its state value.
func (r *InMemoryRepo) Save(request *oauth2login.AuthorizationRequest) error {
	if request == nil {
		return errors.New("request cannot be nil")
	}
	if request.State == "" {
		return errors.New("request state cannot be empty")
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	copied := *request
	r.requests[request.State] = &copied
	return nil
}

// Load returns the stored request for the state without consuming it, or
// nil when none exists.
func (r *InMemoryRepo) Load(state string) (*oauth2login.AuthorizationRequest, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	request, ok := r.requests[state]
	if !ok {
		return nil, nil
	}
	copied := *request
	return &copied, nil
}

// Remove consumes the stored request for the state. Returns nil when the
// state is unknown or already consumed.
func (r *InMemoryRepo) Remove(state string) (*oauth2login.AuthorizationRequest, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	request, ok := r.requests[state]
	if !ok {
		return nil, nil
	}
	delete(r.requests, state)
	return request, nil
}
