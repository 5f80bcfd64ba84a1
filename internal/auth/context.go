package auth

import (
	"context"

	"github.com/saasbase/saasbase/internal/user"
)

// Principal is the authenticated identity installed into the request context
// by the token middleware. Subject is the user id from the token's sub claim.
type Principal struct {
	Subject string
	Roles   []user.Role
}

// HasRole reports whether the principal carries the role.
func (p Principal) HasRole(role user.Role) bool {
	return user.HasRole(p.Roles, role)
}

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
