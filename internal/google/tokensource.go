package google

import (
	"context"

	"golang.org/x/oauth2"
)

// tokenSourceAdapter adapts a TokenProvider to oauth2.TokenSource so
// the generated Google API clients can consume it via
// option.WithTokenSource().
type tokenSourceAdapter struct {
	ctx      context.Context
	provider TokenProvider
}

// TokenSource wraps a TokenProvider as an oauth2.TokenSource. The
// returned source carries real expiry times, so oauth2's reuse layer
// calls back into the provider only when the token nears expiry.
func TokenSource(ctx context.Context, provider TokenProvider) oauth2.TokenSource {
	return &tokenSourceAdapter{ctx: ctx, provider: provider}
}

// Token implements oauth2.TokenSource.
func (s *tokenSourceAdapter) Token() (*oauth2.Token, error) {
	return s.provider.Token(s.ctx)
}
