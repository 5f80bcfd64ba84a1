// Package tenant resolves a tenant identifier from incoming HTTP requests
// and carries it through the request context.
//
// A tenant identifier is a normalized string (lower-cased, trimmed,
// matching [a-z0-9_-]+, at most 50 characters). Resolution tries a chain of
// strategies (header, subdomain, path segment) and never fails: when no
// strategy yields a valid candidate the fixed DefaultID is used, so every
// data-access operation always runs under a concrete tenant.
//
// The identifier travels as an explicit context value rather than ambient
// process state, so concurrent requests cannot observe each other's tenant
// and cleanup is guaranteed by context scoping. The middleware additionally
// projects the identifier into the database session through a SessionBinder
// so that row-level security policies filter rows automatically.
//
// Usage:
//
//	resolver := tenant.NewChainResolver(
//		tenant.NewHeaderResolver(""),
//		tenant.NewSubdomainResolver(),
//		tenant.NewPathResolver(""),
//	)
//	r.Use(tenant.Middleware(resolver,
//		tenant.WithSessionBinder(binder),
//		tenant.WithSkipPaths("/health", "/metrics"),
//	))
package tenant
