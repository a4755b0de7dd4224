package oauth2login

import "fmt"

// OAuth2 error codes raised by the login state machine, plus whatever code
// the remote provider echoes back on its error redirect.
const (
	ErrorCodeAuthorizationRequestNotFound = "authorization_request_not_found"
	ErrorCodeInvalidStateParameter        = "invalid_state_parameter"
	ErrorCodeInvalidRedirectURIParameter  = "invalid_redirect_uri_parameter"
	ErrorCodeInvalidTokenResponse         = "invalid_token_response"
	ErrorCodeInvalidUserInfoResponse      = "invalid_user_info_response"
	ErrorCodeInvalidIDToken               = "invalid_id_token"
	ErrorCodeMissingUserInfoURI           = "missing_user_info_uri"
	ErrorCodeMissingUserNameAttribute     = "missing_user_name_attribute"
	ErrorCodeInsufficientScope            = "insufficient_scope"
)

// Error is an OAuth2 authentication failure carrying a machine-readable
// error code, a human-readable description and an optional error URI.
type Error struct {
	Code        string
	Description string
	URI         string
	cause       error
}

// NewError creates an OAuth2 error for the given code.
func NewError(code, description string) *Error {
	return &Error{Code: code, Description: description}
}

// WrapError creates an OAuth2 error wrapping an underlying cause.
func WrapError(code, description string, cause error) *Error {
	return &Error{Code: code, Description: description, cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code, so callers can test for a
// specific failure with errors.Is(err, oauth2login.NewError(code, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
