// Package exchange performs the authorization-code-for-access-token
// exchange against a provider's token endpoint.
package exchange

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/oauth2login"
	"github.com/jrsteele09/go-auth-middleware/registrations"
)

// DefaultTimeout bounds the token-endpoint call. The exchange must never
// hang on an unresponsive provider.
const DefaultTimeout = 30 * time.Second

// RESTExchanger is the default oauth2login.Exchanger, built on
// golang.org/x/oauth2. Client credentials go out as an HTTP Basic header
// or in the POST body depending on the registration's client
// authentication method.
type RESTExchanger struct {
	httpClient *http.Client
	nowTime    func() time.Time
}

var _ oauth2login.Exchanger = (*RESTExchanger)(nil)

// Option modifies a RESTExchanger at construction time.
type Option func(*RESTExchanger)

// WithHTTPClient replaces the default bounded-timeout HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *RESTExchanger) {
		e.httpClient = client
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(e *RESTExchanger) {
		e.nowTime = nowFunc
	}
}

// NewRESTExchanger creates a token exchanger with a bounded default
// timeout.
func NewRESTExchanger(options ...Option) *RESTExchanger {
	e := &RESTExchanger{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Exchange implements oauth2login.Exchanger. A non-2xx token response is a
// protocol failure (invalid_token_response); a transport failure wraps
// authn.ErrServiceUnavailable and must not be retried silently.
func (e *RESTExchanger) Exchange(ctx context.Context, grant oauth2login.GrantRequest) (*oauth2login.TokenResponse, error) {
	registration := grant.Registration
	request := grant.Exchange.Request
	response := grant.Exchange.Response

	config := oauth2.Config{
		ClientID:     registration.ClientID,
		ClientSecret: registration.ClientSecret,
		RedirectURL:  request.RedirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  registration.TokenURI,
			AuthStyle: authStyle(registration.AuthMethod),
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	token, err := config.Exchange(ctx, response.Code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		var urlErr *url.Error
		switch {
		case stderrors.As(err, &retrieveErr):
			return nil, oauth2login.WrapError(oauth2login.ErrorCodeInvalidTokenResponse,
				"token endpoint returned "+retrieveErr.Response.Status, err)
		case stderrors.As(err, &urlErr):
			// Network/IO failure: the endpoint never answered. Surfaced as
			// a service error so it is never mistaken for bad credentials.
			return nil, errors.Wrap(authn.ErrServiceUnavailable, err.Error())
		default:
			// A 2xx answer the library could not make sense of.
			return nil, oauth2login.WrapError(oauth2login.ErrorCodeInvalidTokenResponse, "malformed token response", err)
		}
	}

	// Scope defaulting: a response without granted scopes means the
	// originally requested scopes were granted in full.
	scopes := request.Scopes
	if granted, ok := token.Extra("scope").(string); ok && granted != "" {
		scopes = strings.Fields(granted)
	}

	result := &oauth2login.TokenResponse{
		AccessToken: oauth2login.AccessToken{
			TokenType: "Bearer",
			Value:     token.AccessToken,
			IssuedAt:  e.nowTime(),
			ExpiresAt: token.Expiry,
			Scopes:    append([]string(nil), scopes...),
		},
		RefreshToken: token.RefreshToken,
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		result.IDToken = idToken
	}
	return result, nil
}

func authStyle(method registrations.ClientAuthMethod) oauth2.AuthStyle {
	switch method {
	case registrations.ClientAuthPost, registrations.ClientAuthNone:
		return oauth2.AuthStyleInParams
	default:
		return oauth2.AuthStyleInHeader
	}
}
