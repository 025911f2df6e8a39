package ports

import "context"

// Rate limit scopes. Each scope has its own quota and window.
const (
	ScopeChallenge = "challenge"
	ScopeSignIn    = "signin"
	ScopeClaim     = "claim"
)

// RateLimiter gates requests per caller key (typically the client IP)
// within a scope's window.
type RateLimiter interface {
	Allow(ctx context.Context, scope, key string) (bool, error)
}
