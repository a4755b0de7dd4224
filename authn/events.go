package authn

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventKind classifies an authentication outcome for audit and monitoring
// sinks.
type EventKind string

const (
	EventSuccess            EventKind = "authentication_success"
	EventInteractiveSuccess EventKind = "interactive_authentication_success"
	EventBadCredentials     EventKind = "authentication_failure_bad_credentials"
	EventUsernameNotFound   EventKind = "authentication_failure_username_not_found"
	EventAccountExpired     EventKind = "authentication_failure_account_expired"
	EventAccountLocked      EventKind = "authentication_failure_account_locked"
	EventCredentialsExpired EventKind = "authentication_failure_credentials_expired"
	EventDisabled           EventKind = "authentication_failure_disabled"
	EventServiceUnavailable EventKind = "authentication_failure_service_unavailable"
	EventProviderNotFound   EventKind = "authentication_failure_provider_not_found"
	EventConcurrentLogin    EventKind = "authentication_failure_concurrent_login"
	EventFailure            EventKind = "authentication_failure"
)

// Event is the audit record published for every authentication outcome.
type Event struct {
	ID        string    // Unique event ID
	Kind      EventKind // Outcome classification
	Principal string    // Principal name, best effort
	TokenKind string    // Mechanism kind of the credential token
	Err       error     // The terminal failure, nil on success
	At        time.Time // When the outcome was reached
}

// Publisher receives authentication outcome events. Implementations must
// not block: publication happens on the authentication path.
type Publisher interface {
	Publish(event Event)
}

// failureEventKinds is the static failure-to-event mapping, checked in
// order. Account-status entries come before ErrBadCredentials so wrapped
// combinations resolve to the more specific kind.
var failureEventKinds = []struct {
	err  error
	kind EventKind
}{
	{ErrConcurrentLogin, EventConcurrentLogin},
	{ErrAccountExpired, EventAccountExpired},
	{ErrAccountLocked, EventAccountLocked},
	{ErrCredentialsExpired, EventCredentialsExpired},
	{ErrDisabled, EventDisabled},
	{ErrServiceUnavailable, EventServiceUnavailable},
	{ErrProviderNotFound, EventProviderNotFound},
	{ErrUsernameNotFound, EventUsernameNotFound},
	{ErrBadCredentials, EventBadCredentials},
}

// FailureEventKind maps an authentication failure to its event kind. The
// mapping is a fixed table: the same error always yields the same kind.
// Failures outside the taxonomy map to the generic EventFailure.
func FailureEventKind(err error) EventKind {
	for _, m := range failureEventKinds {
		if errors.Is(err, m.err) {
			return m.kind
		}
	}
	return EventFailure
}

// PublishEvent delivers an event to an optional sink. A nil publisher is
// a no-op, and a panicking sink never breaks the caller. Entry points use
// it to publish EventInteractiveSuccess after an interactive login.
func PublishEvent(p Publisher, kind EventKind, token *Token, err error) {
	publish(p, newEvent(kind, token, err))
}

// publish delivers an event to an optional sink. A nil publisher is a
// no-op, and a panicking sink never breaks the authentication path.
func publish(p Publisher, event Event) {
	if p == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Str("event", string(event.Kind)).Msg("event publisher panicked")
		}
	}()
	p.Publish(event)
}

func newEvent(kind EventKind, token *Token, err error) Event {
	return Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		Principal: token.PrincipalName(),
		TokenKind: token.Kind(),
		Err:       err,
		At:        time.Now(),
	}
}
