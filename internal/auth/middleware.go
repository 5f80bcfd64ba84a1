package auth

import (
	"log/slog"
	"net/http"

	"github.com/saasbase/saasbase/internal/api"
	"github.com/saasbase/saasbase/internal/user"
	"github.com/saasbase/saasbase/pkg/jwt"
	"github.com/saasbase/saasbase/pkg/tenant"
)

// Middleware authenticates bearer tokens. It never rejects a request by
// itself: a missing, invalid, expired or tenant-mismatched token simply
// leaves the request unauthenticated, and the route guards decide what that
// means. The token's tenant claim must agree with the tenant resolved from
// the request; a token issued under one tenant is useless under another even
// when its signature is valid.
func Middleware(tokens *jwt.Service, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := jwt.BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				log.DebugContext(ctx, "rejected bearer token", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}
			if claims.TokenType != jwt.TokenTypeAccess {
				log.DebugContext(ctx, "rejected non-access token",
					slog.String("type", string(claims.TokenType)))
				next.ServeHTTP(w, r)
				return
			}

			if current := tenant.CurrentID(ctx); claims.Tenant != current {
				log.WarnContext(ctx, "token tenant mismatch",
					slog.String("token_tenant", claims.Tenant),
					slog.String("request_tenant", current))
				next.ServeHTTP(w, r)
				return
			}

			principal := Principal{
				Subject: claims.Subject,
				Roles:   user.ParseRoles(claims.RoleList()),
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}

// RequireAuth rejects unauthenticated requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			api.Error(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects authenticated requests lacking the role with 403, and
// unauthenticated ones with 401.
func RequireRole(role user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				api.Error(w, r, http.StatusUnauthorized, "authentication required")
				return
			}
			if !p.HasRole(role) {
				api.Error(w, r, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
