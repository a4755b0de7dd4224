package users

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var _ UserRepo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the UserRepo
// interface.
type InMemoryRepo struct {
	lock     sync.RWMutex
	users    map[string]User   // keyed by user ID
	emailIDs map[string]string // email to user ID
}

// NewInMemoryRepo creates a new in-memory user repository.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		users:    make(map[string]User),
		emailIDs: make(map[string]string),
	}
}

// Upsert stores or updates a user, assigning an ID when absent.
func (r *InMemoryRepo) Upsert(user *User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if user.Email == "" {
		return errors.New("[InMemoryRepo.Upsert] user email is required")
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	// Store a copy to prevent external modifications
	r.users[user.ID] = *user
	r.emailIDs[user.Email] = user.ID
	return nil
}

// Delete removes a user by email.
func (r *InMemoryRepo) Delete(email string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	userID, ok := r.emailIDs[email]
	if !ok {
		return errors.Wrapf(ErrNotFound, "[InMemoryRepo.Delete] %q", email)
	}
	delete(r.emailIDs, email)
	delete(r.users, userID)
	return nil
}

// GetByEmail retrieves a user by email address.
func (r *InMemoryRepo) GetByEmail(email string) (*User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	userID, ok := r.emailIDs[email]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "[InMemoryRepo.GetByEmail] %q", email)
	}
	user := r.users[userID]
	return &user, nil
}

// GetByID retrieves a user by ID.
func (r *InMemoryRepo) GetByID(id string) (*User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "[InMemoryRepo.GetByID] %q", id)
	}
	out := user
	return &out, nil
}

// List returns users ordered by ID, windowed by offset and limit. A
// non-positive limit returns everything from the offset.
func (r *InMemoryRepo) List(offset, limit int) ([]*User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	userList := make([]*User, 0, len(r.users))
	for _, user := range r.users {
		u := user
		userList = append(userList, &u)
	}
	sort.Slice(userList, func(i, j int) bool {
		return userList[i].ID < userList[j].ID
	})

	if offset >= len(userList) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(userList) {
		end = len(userList)
	}
	return userList[offset:end], nil
}

// SetBlocked toggles the blocked flag on a user.
func (r *InMemoryRepo) SetBlocked(email string, blocked bool) error {
	return r.update(email, func(user *User) {
		user.Blocked = blocked
	})
}

// SetVerified toggles the verified flag on a user.
func (r *InMemoryRepo) SetVerified(email string, verified bool) error {
	return r.update(email, func(user *User) {
		user.Verified = verified
	})
}

func (r *InMemoryRepo) update(email string, apply func(user *User)) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	userID, ok := r.emailIDs[email]
	if !ok {
		return errors.Wrapf(ErrNotFound, "[InMemoryRepo.update] %q", email)
	}
	user := r.users[userID]
	apply(&user)
	r.users[userID] = user
	return nil
}
