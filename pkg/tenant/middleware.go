package tenant

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// SessionBinder projects the active tenant identifier into the data-store
// session so that row-level filtering activates, and clears it afterwards.
//
// Bind returns a derived context carrying whatever session state the binder
// acquired (typically a dedicated pooled connection with a session variable
// set). Unbind releases that state; it must be safe to call on the context
// Bind returned and must reset the session variable before the underlying
// connection can be reused by another request.
type SessionBinder interface {
	Bind(ctx context.Context, tenantID string) (context.Context, error)
	Unbind(ctx context.Context)
}

// Middleware resolves the tenant for every request, binds it to the request
// context and the data-store session, echoes it in the X-Tenant-ID response
// header, and guarantees the session binding is released on every exit path
// including panics.
//
// Paths on the skip list bypass resolution and binding entirely; they must
// not touch tenant-scoped data.
func Middleware(resolver Resolver, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		echoHeader: DefaultHeader,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			id := resolver.Resolve(r)
			if id == "" {
				cfg.logger.DebugContext(r.Context(), "no tenant resolved, using default tenant")
				id = DefaultID
			}

			ctx := WithID(r.Context(), id)

			if cfg.binder != nil {
				bound, err := cfg.binder.Bind(ctx, id)
				if err != nil {
					// Non-fatal: the store's deny-by-default policy is the
					// safety net when the session variable is unset.
					cfg.logger.WarnContext(ctx, "failed to bind session tenant",
						slog.String("tenant_id", id),
						slog.Any("error", err))
				} else {
					ctx = bound
					defer cfg.binder.Unbind(bound)
				}
			}

			w.Header().Set(cfg.echoHeader, id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
