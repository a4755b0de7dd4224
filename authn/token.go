package authn

// Token kinds identify which authentication mechanism produced a credential
// token. Providers declare the kinds they can decide on via Supports, so
// dispatch happens on an explicit discriminant rather than on the concrete
// type of the payload.
const (
	// KindUsernamePassword carries an email/password pair collected from a
	// login form or basic-auth header.
	KindUsernamePassword = "username_password"

	// KindPreAuthenticated carries an identity established outside this
	// process (reverse proxy header, mutual TLS, container-managed auth).
	KindPreAuthenticated = "pre_authenticated"

	// KindBearer carries a raw bearer token (JWT) from an Authorization
	// header.
	KindBearer = "bearer"

	// KindOAuth2Login carries the authorization-code callback payload of an
	// OAuth2/OIDC login round trip.
	KindOAuth2Login = "oauth2_login"
)

// Token is the credential token passed through the provider chain. Before
// authentication it holds whatever the entry adapter extracted from the
// request; after a provider authenticates it, it holds the resolved
// principal and granted authorities.
//
// Once Authenticated() is true the principal and authorities are fixed for
// the remainder of the request. Details may still be set by the dispatcher,
// which copies request metadata onto a successful result.
type Token struct {
	kind          string
	principal     any
	credentials   any
	authorities   []string
	authenticated bool
	details       any
}

// NewToken creates an unauthenticated token for the given mechanism kind.
// A provider in the chain is expected to either authenticate it or pass.
func NewToken(kind string, principal, credentials any) *Token {
	return &Token{
		kind:        kind,
		principal:   principal,
		credentials: credentials,
	}
}

// NewAuthenticatedToken creates a fully authenticated token. Only providers
// should call this, after they have verified the credentials. The verified
// credentials may be carried along; the dispatcher erases them once the
// overall authentication succeeds.
func NewAuthenticatedToken(kind string, principal, credentials any, authorities []string) *Token {
	t := &Token{
		kind:          kind,
		principal:     principal,
		credentials:   credentials,
		authenticated: true,
	}
	t.authorities = append(t.authorities, authorities...)
	return t
}

// Kind returns the mechanism discriminant of the token.
func (t *Token) Kind() string { return t.kind }

// Principal returns the identity reference. For an unauthenticated token
// this is whatever the entry adapter extracted (e.g. a username); for an
// authenticated token it is the resolved principal.
func (t *Token) Principal() any { return t.principal }

// Credentials returns the secret presented with the token, or nil once the
// credentials have been erased.
func (t *Token) Credentials() any { return t.credentials }

// Authorities returns a copy of the granted authority strings, in grant
// order.
func (t *Token) Authorities() []string {
	out := make([]string, len(t.authorities))
	copy(out, t.authorities)
	return out
}

// Authenticated reports whether a provider has verified this token.
func (t *Token) Authenticated() bool { return t.authenticated }

// Details returns the request-context blob attached to the token.
func (t *Token) Details() any { return t.details }

// SetDetails attaches request metadata to the token. Unlike the principal
// and authorities, details remain settable after authentication so the
// dispatcher can copy them onto a successful result.
func (t *Token) SetDetails(details any) { t.details = details }

// EraseCredentials drops the secret from the token. Called by the
// dispatcher after a successful authentication so the secret does not
// outlive its use.
func (t *Token) EraseCredentials() { t.credentials = nil }

// PrincipalName renders the token's principal as a string for logging,
// event records and session accounting.
func (t *Token) PrincipalName() string {
	return principalName(t.principal)
}

func principalName(principal any) string {
	switch p := principal.(type) {
	case nil:
		return ""
	case string:
		return p
	case interface{ Name() string }:
		return p.Name()
	case interface{ String() string }:
		return p.String()
	default:
		return ""
	}
}
