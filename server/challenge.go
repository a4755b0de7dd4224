package server

import (
	"fmt"
	"net/http"
	"strings"
)

// BearerChallenge is the WWW-Authenticate challenge written on
// authentication failures. Empty fields are omitted from the header.
type BearerChallenge struct {
	Error            string
	ErrorDescription string
	ErrorURI         string
	Scope            string // Required scope, only for insufficient-scope failures
}

// WriteChallenge sets the WWW-Authenticate header for a failed request.
func WriteChallenge(w http.ResponseWriter, challenge BearerChallenge) {
	w.Header().Set("WWW-Authenticate", challenge.String())
}

// String renders the challenge header value.
func (c BearerChallenge) String() string {
	params := make([]string, 0, 4)
	if c.Error != "" {
		params = append(params, fmt.Sprintf(`error="%s"`, EscapeQuotes(c.Error)))
	}
	if c.ErrorDescription != "" {
		params = append(params, fmt.Sprintf(`error_description="%s"`, EscapeQuotes(c.ErrorDescription)))
	}
	if c.ErrorURI != "" {
		params = append(params, fmt.Sprintf(`error_uri="%s"`, EscapeQuotes(c.ErrorURI)))
	}
	if c.Scope != "" {
		params = append(params, fmt.Sprintf(`scope="%s"`, EscapeQuotes(c.Scope)))
	}
	if len(params) == 0 {
		return "Bearer"
	}
	return "Bearer " + strings.Join(params, ", ")
}

// EscapeQuotes escapes backslashes and double quotes for use inside a
// quoted-string header parameter.
func EscapeQuotes(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
