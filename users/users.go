package users

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a granted authority string attached to a user.
type RoleType string

const (
	RoleAdmin  RoleType = "admin"  // Can manage users and client registrations
	RoleUser   RoleType = "user"   // Regular authenticated user
	RoleViewer RoleType = "viewer" // Read-only access
)

// User is an account as seen by the authentication providers. The status
// flags feed the account-status failure taxonomy: a provider checks them
// before the password and refuses the login when any of them trips.
type User struct {
	ID           string     `json:"id,omitempty"`         // Unique identifier for the user
	Email        string     `json:"email,omitempty"`      // User's email address, the login principal
	Username     string     `json:"username,omitempty"`   // Unique username
	PasswordHash string     `json:"-"`                    // Hashed version of the user's password - never serialize
	FirstName    string     `json:"first_name,omitempty"` // First name of the user
	LastName     string     `json:"last_name,omitempty"`  // Last name of the user
	Roles        []RoleType `json:"roles,omitempty"`      // Granted authorities
	DateJoined   time.Time  `json:"date_joined,omitempty"`
	LastLogin    time.Time  `json:"last_login,omitempty"`

	Verified               bool      `json:"verified,omitempty"`                 // Unverified accounts are treated as disabled
	Blocked                bool      `json:"blocked,omitempty"`                  // Blocked accounts are locked out
	PasswordChangeRequired bool      `json:"password_change_required,omitempty"` // Forces a credentials-expired failure on next login
	AccountExpiresAt       time.Time `json:"account_expires_at,omitempty"`       // Zero means the account never expires
	PasswordExpiresAt      time.Time `json:"password_expires_at,omitempty"`      // Zero means the password never expires
}

// AccountExpired reports whether the account itself has lapsed.
func (u *User) AccountExpired(now time.Time) bool {
	return !u.AccountExpiresAt.IsZero() && u.AccountExpiresAt.Before(now)
}

// CredentialsExpired reports whether the password must be rotated before
// the user may log in again.
func (u *User) CredentialsExpired(now time.Time) bool {
	if u.PasswordChangeRequired {
		return true
	}
	return !u.PasswordExpiresAt.IsZero() && u.PasswordExpiresAt.Before(now)
}

// Authorities renders the user's roles as authority strings.
func (u *User) Authorities() []string {
	authorities := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		authorities = append(authorities, string(role))
	}
	return authorities
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
