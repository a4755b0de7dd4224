package authn

import (
	"sync"

	"github.com/pkg/errors"
)

// SessionAdmission decides whether a newly authenticated principal may
// proceed given its existing concurrent sessions. A denial is terminal and
// overrides an otherwise successful authentication.
type SessionAdmission interface {
	// Admit registers a new session for the token's principal, or returns
	// an error wrapping ErrConcurrentLogin when the limit is reached.
	Admit(token *Token) error
}

// SessionRegistry is an in-memory SessionAdmission that caps the number of
// concurrent sessions per principal.
type SessionRegistry struct {
	maxSessions int

	lock     sync.Mutex
	sessions map[string]int
}

var _ SessionAdmission = (*SessionRegistry)(nil)

// NewSessionRegistry creates a registry allowing up to maxSessions
// concurrent sessions per principal. maxSessions <= 0 means unlimited.
func NewSessionRegistry(maxSessions int) *SessionRegistry {
	return &SessionRegistry{
		maxSessions: maxSessions,
		sessions:    make(map[string]int),
	}
}

// Admit implements SessionAdmission.
func (r *SessionRegistry) Admit(token *Token) error {
	principal := token.PrincipalName()
	if principal == "" {
		return nil
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if r.maxSessions > 0 && r.sessions[principal] >= r.maxSessions {
		return errors.Wrapf(ErrConcurrentLogin, "[SessionRegistry.Admit] principal %q", principal)
	}
	r.sessions[principal]++
	return nil
}

// Release drops one session for the principal, e.g. on logout or session
// expiry.
func (r *SessionRegistry) Release(principal string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.sessions[principal] <= 1 {
		delete(r.sessions, principal)
		return
	}
	r.sessions[principal]--
}

// Sessions returns the current session count for a principal.
func (r *SessionRegistry) Sessions(principal string) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.sessions[principal]
}
