package session

import "context"

type ctxKey struct{}

// WithID attaches the storefront session id to the context.
func WithID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, sessionID)
}

// IDFromContext returns the storefront session id, or "" when absent.
func IDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}
