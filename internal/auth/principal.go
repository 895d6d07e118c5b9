package auth

import (
	"context"

	"mytrade/internal/domain"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	Viewer domain.Viewer
	Token  string
	// SessionID is empty when the caller authenticated with a bearer token.
	SessionID string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
