// Package registrations holds the static configuration describing how to
// talk to one OAuth2/OIDC provider.
package registrations

import (
	"errors"
	"strings"
)

// ClientAuthMethod selects how client credentials are sent to the token
// endpoint.
type ClientAuthMethod string

const (
	// ClientAuthBasic sends client_id/client_secret as an HTTP Basic
	// Authorization header. The default for confidential clients.
	ClientAuthBasic ClientAuthMethod = "client_secret_basic"

	// ClientAuthPost sends client_id/client_secret in the POST body.
	ClientAuthPost ClientAuthMethod = "client_secret_post"

	// ClientAuthNone sends no client secret. Used by public clients.
	ClientAuthNone ClientAuthMethod = "none"
)

// GrantTypeAuthorizationCode is the only grant type a login registration
// supports.
const GrantTypeAuthorizationCode = "authorization_code"

// Template variables allowed in a registration's redirect URI. They are
// expanded per request at flow initiation; the concrete value, never the
// template, is what gets stored and compared against the callback.
const (
	TemplateBaseURL        = "{baseUrl}"
	TemplateRegistrationID = "{registrationId}"
)

var (
	ErrNotFound      = errors.New("client registration not found")
	ErrInvalidConfig = errors.New("invalid client registration")
)

// Registration is the immutable configuration for one OAuth2/OIDC
// provider. Resolve a working copy with WithRedirectURI when a concrete
// redirect URI has to replace a templated one; never mutate a stored
// registration.
type Registration struct {
	ID               string           `json:"id"`                // Registration ID, e.g. "google"
	ClientID         string           `json:"clientId"`          // Client identifier issued by the provider
	ClientSecret     string           `json:"-"`                 // Client secret - never serialize
	AuthMethod       ClientAuthMethod `json:"authMethod"`        // How to authenticate at the token endpoint
	RedirectURI      string           `json:"redirectUri"`       // Callback URI, may contain template variables
	Scopes           []string         `json:"scopes"`            // Scopes requested at authorization time
	AuthorizationURI string           `json:"authorizationUri"`  // Provider's authorization endpoint
	TokenURI         string           `json:"tokenUri"`          // Provider's token endpoint
	UserInfoURI      string           `json:"userInfoUri"`       // Provider's user-info endpoint
	UserNameAttr     string           `json:"userNameAttribute"` // Attribute holding the principal name, e.g. "sub"
	JWKSetURI        string           `json:"jwkSetUri"`         // Provider's JWK set, required for OIDC
	IssuerURI        string           `json:"issuerUri"`         // Provider's issuer, required for OIDC
}

// Validate checks the fields a login flow cannot run without.
func (r Registration) Validate() error {
	switch {
	case r.ID == "":
		return errors.Join(ErrInvalidConfig, errors.New("registration ID is required"))
	case r.ClientID == "":
		return errors.Join(ErrInvalidConfig, errors.New("client ID is required"))
	case r.AuthorizationURI == "":
		return errors.Join(ErrInvalidConfig, errors.New("authorization URI is required"))
	case r.TokenURI == "":
		return errors.Join(ErrInvalidConfig, errors.New("token URI is required"))
	case r.RedirectURI == "":
		return errors.Join(ErrInvalidConfig, errors.New("redirect URI is required"))
	case r.AuthMethod != ClientAuthBasic && r.AuthMethod != ClientAuthPost && r.AuthMethod != ClientAuthNone:
		return errors.Join(ErrInvalidConfig, errors.New("unknown client authentication method"))
	}
	return nil
}

// HasScope reports whether the registration requests the given scope.
func (r Registration) HasScope(scope string) bool {
	for _, s := range r.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// IsTemplated reports whether the redirect URI still contains unresolved
// template variables.
func (r Registration) IsTemplated() bool {
	return strings.Contains(r.RedirectURI, "{")
}

// ExpandRedirectURI resolves the redirect URI template against the actual
// inbound base URL (scheme://host). A non-templated URI is returned
// unchanged.
func (r Registration) ExpandRedirectURI(baseURL string) string {
	uri := strings.ReplaceAll(r.RedirectURI, TemplateBaseURL, strings.TrimSuffix(baseURL, "/"))
	return strings.ReplaceAll(uri, TemplateRegistrationID, r.ID)
}

// WithRedirectURI returns a working copy with the concrete redirect URI
// substituted. Used on the callback leg so validation and the token
// exchange see the URI that was actually used, not the template.
func (r Registration) WithRedirectURI(uri string) Registration {
	r.RedirectURI = uri
	return r
}
