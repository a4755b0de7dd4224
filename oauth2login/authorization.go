// Package oauth2login implements the relying-party side of the OAuth2/OIDC
// Authorization Code login flow: the outbound authorization request, the
// inbound callback response, their validation, the code-for-token exchange
// and principal construction.
package oauth2login

import (
	"crypto/rand"
	"encoding/base64"
	"net/url"
	"strings"
)

const stateLength = 32

// AuthorizationRequest captures one outbound authorization redirect. It is
// stored when the flow is initiated and consumed exactly once when the
// matching callback arrives; the state value is never reusable.
type AuthorizationRequest struct {
	// RegistrationID names the client registration this request was built
	// from.
	RegistrationID string

	// AuthorizationURI is the provider endpoint the user agent was sent
	// to.
	AuthorizationURI string

	// ClientID identifies the relying party at the provider.
	ClientID string

	// RedirectURI is the concrete callback URI used for this request.
	// Template variables are expanded before the request is stored - this
	// is always the value the callback must arrive on.
	RedirectURI string

	// Scopes requested from the provider, in request order. Also the
	// fallback granted-scope set when the token response omits scopes.
	Scopes []string

	// State is the unguessable nonce binding this request to its
	// callback.
	State string

	// ResponseType is always "code" for the authorization-code grant.
	ResponseType string

	// AdditionalParams are extra authorization-endpoint parameters
	// (prompt, nonce, audience and the like).
	AdditionalParams map[string]string
}

// NewState produces an unguessable state value for binding an
// authorization request to its callback.
func NewState() (string, error) {
	bytes := make([]byte, stateLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// RedirectURL builds the full authorization-endpoint URL the user agent
// is redirected to.
func (r *AuthorizationRequest) RedirectURL() string {
	query := url.Values{}
	query.Set("response_type", r.ResponseType)
	query.Set("client_id", r.ClientID)
	query.Set("redirect_uri", r.RedirectURI)
	query.Set("state", r.State)
	if len(r.Scopes) > 0 {
		query.Set("scope", strings.Join(r.Scopes, " "))
	}
	for k, v := range r.AdditionalParams {
		query.Set(k, v)
	}

	separator := "?"
	if strings.Contains(r.AuthorizationURI, "?") {
		separator = "&"
	}
	return r.AuthorizationURI + separator + query.Encode()
}

// AuthorizationResponse is the inbound callback leg: either a code or an
// error, never both, always with the echoed state. It only exists for the
// duration of the callback request.
type AuthorizationResponse struct {
	Code             string // Authorization code on success
	State            string // Echoed state parameter
	RedirectURI      string // The URI the callback actually arrived on
	ErrorCode        string // Provider error code, empty on success
	ErrorDescription string
	ErrorURI         string
}

// IsError reports whether the provider redirected back with an error
// instead of a code.
func (r *AuthorizationResponse) IsError() bool {
	return r.ErrorCode != ""
}

// Exchange pairs the stored authorization request with the callback
// response it is being validated against.
type Exchange struct {
	Request  *AuthorizationRequest
	Response *AuthorizationResponse
}
