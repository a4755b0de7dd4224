package registrations

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface.
type InMemoryRepo struct {
	lock          sync.RWMutex
	registrations map[string]Registration
}

// NewInMemoryRepo creates a new in-memory client registration repository.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		registrations: make(map[string]Registration),
	}
}

// Upsert stores or updates a registration after validating it.
func (r *InMemoryRepo) Upsert(registration *Registration) error {
	if registration == nil {
		return errors.New("registration cannot be nil")
	}
	if err := registration.Validate(); err != nil {
		return errors.Wrap(err, "[InMemoryRepo.Upsert]")
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	// Store a copy to prevent external modifications
	r.registrations[registration.ID] = *registration
	return nil
}

// Delete removes a registration.
func (r *InMemoryRepo) Delete(registrationID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.registrations, registrationID)
	return nil
}

// Get retrieves a registration by ID.
func (r *InMemoryRepo) Get(registrationID string) (*Registration, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	registration, ok := r.registrations[registrationID]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "[InMemoryRepo.Get] %q", registrationID)
	}

	// Return a copy to prevent external modifications
	out := registration
	return &out, nil
}

// List returns all registrations ordered by ID.
func (r *InMemoryRepo) List() ([]*Registration, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]*Registration, 0, len(r.registrations))
	for _, registration := range r.registrations {
		reg := registration
		out = append(out, &reg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}
