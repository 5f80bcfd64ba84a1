package pg_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saasbase/saasbase/pkg/pg"
)

func TestConnFromContext(t *testing.T) {
	t.Parallel()

	t.Run("empty context has no connection", func(t *testing.T) {
		t.Parallel()

		conn, ok := pg.ConnFromContext(context.Background())
		assert.False(t, ok)
		assert.Nil(t, conn)
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		bound := &pgxpool.Conn{}
		ctx := pg.WithConn(context.Background(), bound)

		conn, ok := pg.ConnFromContext(ctx)
		require.True(t, ok)
		assert.Same(t, bound, conn)
	})
}

func TestQuerierFromContext(t *testing.T) {
	t.Parallel()

	t.Run("falls back to pool when unbound", func(t *testing.T) {
		t.Parallel()

		pool := &pgxpool.Pool{}
		q := pg.QuerierFromContext(context.Background(), pool)
		assert.Same(t, pool, q)
	})

	t.Run("prefers bound connection", func(t *testing.T) {
		t.Parallel()

		bound := &pgxpool.Conn{}
		ctx := pg.WithConn(context.Background(), bound)

		q := pg.QuerierFromContext(ctx, &pgxpool.Pool{})
		assert.Same(t, bound, q)
	})
}
