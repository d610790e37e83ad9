package driven

import "context"

// TokenProvider provides bearer tokens for authenticated API calls.
// Implementations handle caching and refresh transparently.
type TokenProvider interface {
	// Token returns a valid access token, refreshing it if expired.
	Token(ctx context.Context) (string, error)
}
