package requestid

import "context"

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithContext returns a context carrying the correlation id.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the correlation id bound to the context, or "" when
// none is set.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
