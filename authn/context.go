package authn

import "context"

// SecurityContext holds the authenticated token for one request. It is
// created at request entry, threaded through the call chain on the request
// context, and discarded at request exit. It is never shared between
// requests and never stored globally.
type SecurityContext struct {
	token *Token
}

// NewSecurityContext creates an empty security context.
func NewSecurityContext() *SecurityContext {
	return &SecurityContext{}
}

// Token returns the token installed for this request, or nil when the
// request is not yet authenticated.
func (sc *SecurityContext) Token() *Token {
	if sc == nil {
		return nil
	}
	return sc.token
}

// SetToken installs an authenticated token for the request.
func (sc *SecurityContext) SetToken(token *Token) {
	sc.token = token
}

// Clear removes any partially established authentication state.
func (sc *SecurityContext) Clear() {
	sc.token = nil
}

type securityContextKey struct{}

// WithSecurityContext attaches a security context to a request context.
// An empty-struct key keeps it collision-free with other packages.
func WithSecurityContext(ctx context.Context, sc *SecurityContext) context.Context {
	return context.WithValue(ctx, securityContextKey{}, sc)
}

// SecurityContextFrom retrieves the request's security context. Returns
// nil when no entry middleware created one.
func SecurityContextFrom(ctx context.Context) *SecurityContext {
	sc, _ := ctx.Value(securityContextKey{}).(*SecurityContext)
	return sc
}
