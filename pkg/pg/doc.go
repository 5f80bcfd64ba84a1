// Package pg provides the PostgreSQL layer: connection pooling with retry,
// goose schema migrations, health checks, error classification helpers, and
// the session tenant binder that activates row-level security.
//
// # Tenant binding
//
// Tenant isolation relies on PostgreSQL row-level security policies that
// compare each row's tenant_id column to the session-scoped
// app.current_tenant setting. TenantBinder pins a pooled connection for the
// duration of one request, sets the session variable on it, and guarantees
// the variable is reset before the connection returns to the pool — a reused
// session must never carry a previous request's tenant binding.
//
// Repositories obtain their querier through QuerierFromContext: the bound
// connection when the request carries one, the shared pool otherwise. The
// RLS policies are written deny-by-default, so an unbound session sees no
// tenant-scoped rows at all.
package pg
