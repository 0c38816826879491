package auth

import (
	"context"
)

// TokenProvider hands back a bearer token for the Graph API. Implementations
// are responsible for caching and renewal; callers just ask for a token per
// request.
type TokenProvider interface {
	// Token returns a currently valid access token or an error if one
	// cannot be acquired.
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider returns a fixed token. Used in tests and local tooling.
type StaticTokenProvider struct {
	AccessToken string
}

func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{AccessToken: token}
}

func (p *StaticTokenProvider) Token(_ context.Context) (string, error) {
	return p.AccessToken, nil
}
