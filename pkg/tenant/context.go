package tenant

import (
	"context"
	"log/slog"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithID returns a context carrying the given tenant identifier. A blank or
// invalid identifier is normalized to DefaultID instead of being rejected,
// so downstream data access always sees a usable tenant. Callers that need
// to distinguish invalid input should Sanitize before calling.
func WithID(ctx context.Context, id string) context.Context {
	normalized, ok := Sanitize(id)
	if !ok {
		normalized = DefaultID
	}
	return context.WithValue(ctx, contextKey{}, normalized)
}

// IDFromContext retrieves the tenant identifier from the context.
// Returns "", false if none is set.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok
}

// CurrentID returns the tenant identifier bound to the context, or
// DefaultID when none is set. It never returns an empty string.
func CurrentID(ctx context.Context) string {
	if id, ok := IDFromContext(ctx); ok && id != "" {
		return id
	}
	return DefaultID
}

// HasID reports whether a tenant identifier is explicitly bound to the context.
func HasID(ctx context.Context) bool {
	_, ok := IDFromContext(ctx)
	return ok
}

// LoggerExtractor returns a logger context extractor that annotates every
// log record with the tenant identifier bound to the context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id), true
		}
		return slog.Attr{}, false
	}
}
