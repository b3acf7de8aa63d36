package gate

import (
	"context"

	"github.com/pribylovaa/blastify-gateway/internal/token"
)

type claimsKey struct{}

// WithClaims кладёт claims пропущенного запроса в контекст.
func WithClaims(ctx context.Context, c *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom достаёт claims; для публичных путей их может не быть.
func ClaimsFrom(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*token.Claims)
	return c, ok && c != nil
}
