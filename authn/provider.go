package authn

import "context"

// Provider is a single authentication strategy.
//
// Authenticate has three outcomes:
//   - a non-nil authenticated token: this provider decided, the chain stops
//   - (nil, nil): the provider cannot decide on this token, try the next one
//   - an error from the taxonomy in errors.go: the attempt failed
//
// Supports gates Authenticate on the token's kind discriminant, so a
// provider is never handed a token shape it does not understand.
type Provider interface {
	Supports(kind string) bool
	Authenticate(ctx context.Context, token *Token) (*Token, error)
}

// Authenticator is the dispatch contract: something that takes a credential
// token and either fully authenticates it or fails. ProviderManager
// implements it, and a manager can delegate to another Authenticator as its
// parent.
type Authenticator interface {
	Authenticate(ctx context.Context, token *Token) (*Token, error)
}
