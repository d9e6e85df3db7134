package gql

import "context"

type contextKey string

const tokenKey contextKey = "bearer-token"

// WithToken stores the raw bearer credential for resolvers to verify.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFrom returns the credential stored by the transport layer.
func TokenFrom(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey).(string); ok {
		return t
	}
	return ""
}
