package users

import "errors"

// ErrNotFound is returned by repositories when no user exists for the
// given key. Providers must distinguish it from backend failures: an
// unknown user maps to bad credentials (or username-not-found when the
// hide policy is off), a backend failure maps to service-unavailable.
var ErrNotFound = errors.New("user not found")

type UserRepo interface {
	Upsert(user *User) error
	Delete(email string) error
	GetByEmail(email string) (*User, error)
	GetByID(ID string) (*User, error)
	List(offset, limit int) ([]*User, error)
	SetBlocked(email string, blocked bool) error
	SetVerified(email string, verified bool) error
}
