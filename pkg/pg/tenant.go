package pg

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the query surface shared by *pgxpool.Pool and *pgxpool.Conn.
// Repositories depend on it so the same code runs on a tenant-bound
// connection or on the bare pool.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// connContextKey is a private type to prevent collisions with other context keys.
type connContextKey struct{}

// WithConn returns a context carrying a tenant-bound pooled connection.
func WithConn(ctx context.Context, conn *pgxpool.Conn) context.Context {
	return context.WithValue(ctx, connContextKey{}, conn)
}

// ConnFromContext retrieves the tenant-bound connection from the context.
func ConnFromContext(ctx context.Context) (*pgxpool.Conn, bool) {
	conn, ok := ctx.Value(connContextKey{}).(*pgxpool.Conn)
	return conn, ok
}

// QuerierFromContext returns the tenant-bound connection when the request
// carries one, falling back to the pool. On the fallback path the session
// variable is unset and the deny-by-default RLS policies return no
// tenant-scoped rows.
func QuerierFromContext(ctx context.Context, pool *pgxpool.Pool) Querier {
	if conn, ok := ConnFromContext(ctx); ok {
		return conn
	}
	return pool
}

// TenantBinder projects the active tenant identifier into a PostgreSQL
// session so the row-level security policies filter every subsequent query.
// It implements the tenant middleware's SessionBinder contract.
type TenantBinder struct {
	pool    *pgxpool.Pool
	setting string
	log     *slog.Logger
}

// NewTenantBinder creates a binder over the pool. An empty setting selects
// "app.current_tenant"; a nil logger selects slog.Default().
func NewTenantBinder(pool *pgxpool.Pool, setting string, log *slog.Logger) *TenantBinder {
	if setting == "" {
		setting = "app.current_tenant"
	}
	if log == nil {
		log = slog.Default()
	}
	return &TenantBinder{pool: pool, setting: setting, log: log}
}

// Bind acquires a dedicated connection from the pool, sets the session
// tenant variable on it, and returns a context carrying the bound
// connection. The caller must invoke Unbind on the returned context exactly
// once, on every exit path; until then the connection stays pinned to the
// request.
func (b *TenantBinder) Bind(ctx context.Context, tenantID string) (context.Context, error) {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return ctx, errors.Join(ErrBindSessionTenant, err)
	}

	if _, err := conn.Exec(ctx, "SELECT set_config($1, $2, false)", b.setting, tenantID); err != nil {
		conn.Release()
		return ctx, errors.Join(ErrBindSessionTenant, err)
	}

	return WithConn(ctx, conn), nil
}

// Unbind resets the session tenant variable and releases the connection
// back to the pool. It must run even when the request context is already
// canceled — a pooled session returning with a stale tenant binding would
// leak that tenant to whichever request draws the connection next.
func (b *TenantBinder) Unbind(ctx context.Context) {
	conn, ok := ConnFromContext(ctx)
	if !ok {
		return
	}
	defer conn.Release()

	// The request context may be done (client disconnect, timeout); the
	// reset must still reach the server.
	cleanupCtx := context.WithoutCancel(ctx)
	if _, err := conn.Exec(cleanupCtx, "SELECT set_config($1, '', false)", b.setting); err != nil {
		b.log.WarnContext(cleanupCtx, "failed to clear session tenant",
			slog.Any("error", err))
	}
}
