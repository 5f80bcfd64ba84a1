package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saasbase/saasbase/pkg/tenant"
)

func TestWithID(t *testing.T) {
	t.Parallel()

	t.Run("binds tenant to context", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithID(context.Background(), "acme")

		id, ok := tenant.IDFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "acme", id)
	})

	t.Run("normalizes candidate", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithID(context.Background(), "  ACME  ")
		assert.Equal(t, "acme", tenant.CurrentID(ctx))
	})

	t.Run("blank identifier falls back to default", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithID(context.Background(), "")
		assert.Equal(t, tenant.DefaultID, tenant.CurrentID(ctx))
	})

	t.Run("invalid identifier falls back to default", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithID(context.Background(), "bad tenant!")
		assert.Equal(t, tenant.DefaultID, tenant.CurrentID(ctx))
	})

	t.Run("overwrites existing binding", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithID(context.Background(), "acme")
		ctx = tenant.WithID(ctx, "globex")
		assert.Equal(t, "globex", tenant.CurrentID(ctx))
	})
}

func TestCurrentID(t *testing.T) {
	t.Parallel()

	t.Run("returns default when unset", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, tenant.DefaultID, tenant.CurrentID(context.Background()))
	})

	t.Run("never returns empty", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithID(context.Background(), "")
		assert.NotEmpty(t, tenant.CurrentID(ctx))
	})
}

func TestHasID(t *testing.T) {
	t.Parallel()

	assert.False(t, tenant.HasID(context.Background()))
	assert.True(t, tenant.HasID(tenant.WithID(context.Background(), "acme")))
}

func TestContextIsolation(t *testing.T) {
	t.Parallel()

	// Two sibling contexts must never observe each other's binding.
	parent := context.Background()
	ctxA := tenant.WithID(parent, "tenant-a")
	ctxB := tenant.WithID(parent, "tenant-b")

	assert.Equal(t, "tenant-a", tenant.CurrentID(ctxA))
	assert.Equal(t, "tenant-b", tenant.CurrentID(ctxB))
	assert.Equal(t, tenant.DefaultID, tenant.CurrentID(parent))
}
