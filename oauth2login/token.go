package oauth2login

import (
	"time"

	"github.com/jrsteele09/go-auth-middleware/registrations"
)

// AccessToken is a bearer token obtained from the provider's token
// endpoint. Its value is never logged.
type AccessToken struct {
	TokenType string    `json:"token_type"` // Always "Bearer"
	Value     string    `json:"-"`          // The token itself - never serialize
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Scopes    []string  `json:"scopes"` // Effective granted scopes
}

// TokenResponse is the result of a successful code-for-token exchange.
type TokenResponse struct {
	AccessToken  AccessToken
	RefreshToken string
	IDToken      string // Raw OIDC ID token, empty for plain OAuth2
}

// GrantRequest carries everything the token exchanger needs for one
// authorization-code grant: the working-copy registration (concrete
// redirect URI already substituted) and the validated exchange.
type GrantRequest struct {
	Registration registrations.Registration
	Exchange     Exchange
}

// UserRequest carries what the user-info service needs to load the end
// user's attributes.
type UserRequest struct {
	Registration registrations.Registration
	Token        AccessToken
	IDToken      string // Raw ID token, set on the OIDC branch
}

// User is the principal constructed from a successful login: the
// designated name attribute, the full attribute map, and the authorities
// derived from it. Immutable once constructed.
type User struct {
	nameAttr    string
	attributes  map[string]any
	authorities []string
}

// NewUser builds a principal from provider attributes. nameAttr designates
// the attribute holding the unique identifier and must be present in the
// attribute map.
func NewUser(nameAttr string, attributes map[string]any, authorities []string) (*User, error) {
	if nameAttr == "" {
		return nil, NewError(ErrorCodeMissingUserNameAttribute, "no user name attribute configured")
	}
	if _, ok := attributes[nameAttr]; !ok {
		return nil, NewError(ErrorCodeMissingUserNameAttribute, "attribute "+nameAttr+" not found in user info")
	}
	attrs := make(map[string]any, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}
	return &User{
		nameAttr:    nameAttr,
		attributes:  attrs,
		authorities: append([]string(nil), authorities...),
	}, nil
}

// Name returns the value of the designated name attribute.
func (u *User) Name() string {
	switch v := u.attributes[u.nameAttr].(type) {
	case string:
		return v
	default:
		return ""
	}
}

// Attribute returns a single attribute value.
func (u *User) Attribute(name string) (any, bool) {
	v, ok := u.attributes[name]
	return v, ok
}

// Attributes returns a copy of the full attribute map.
func (u *User) Attributes() map[string]any {
	out := make(map[string]any, len(u.attributes))
	for k, v := range u.attributes {
		out[k] = v
	}
	return out
}

// Authorities returns a copy of the derived authorities.
func (u *User) Authorities() []string {
	return append([]string(nil), u.authorities...)
}
