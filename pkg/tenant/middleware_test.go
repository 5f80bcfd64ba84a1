package tenant_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saasbase/saasbase/pkg/tenant"
)

// recordingBinder tracks bind/unbind calls so tests can assert the
// middleware's cleanup guarantees.
type recordingBinder struct {
	mu       sync.Mutex
	bound    []string
	unbinds  int
	bindErr  error
	lastCtx  context.Context
	unboundC []string
}

type binderKey struct{}

func (b *recordingBinder) Bind(ctx context.Context, tenantID string) (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bindErr != nil {
		return ctx, b.bindErr
	}
	b.bound = append(b.bound, tenantID)
	ctx = context.WithValue(ctx, binderKey{}, tenantID)
	b.lastCtx = ctx
	return ctx, nil
}

func (b *recordingBinder) Unbind(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unbinds++
	if id, ok := ctx.Value(binderKey{}).(string); ok {
		b.unboundC = append(b.unboundC, id)
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	newHandler := func(capture *string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*capture = tenant.CurrentID(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("binds resolved tenant and echoes header", func(t *testing.T) {
		t.Parallel()

		binder := &recordingBinder{}
		var seen string
		mw := tenant.Middleware(
			tenant.NewChainResolver(tenant.NewHeaderResolver("")),
			tenant.WithSessionBinder(binder),
		)

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("X-Tenant-ID", "acme")
		rec := httptest.NewRecorder()
		mw(newHandler(&seen)).ServeHTTP(rec, req)

		assert.Equal(t, "acme", seen)
		assert.Equal(t, "acme", rec.Header().Get("X-Tenant-ID"))
		assert.Equal(t, []string{"acme"}, binder.bound)
		assert.Equal(t, 1, binder.unbinds, "unbind must run exactly once")
		assert.Equal(t, []string{"acme"}, binder.unboundC, "unbind must see the bound session")
	})

	t.Run("falls back to default tenant", func(t *testing.T) {
		t.Parallel()

		binder := &recordingBinder{}
		var seen string
		mw := tenant.Middleware(
			tenant.NewChainResolver(tenant.NewHeaderResolver("")),
			tenant.WithSessionBinder(binder),
		)

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		rec := httptest.NewRecorder()
		mw(newHandler(&seen)).ServeHTTP(rec, req)

		assert.Equal(t, tenant.DefaultID, seen)
		assert.Equal(t, tenant.DefaultID, rec.Header().Get("X-Tenant-ID"))
	})

	t.Run("bind failure is non-fatal", func(t *testing.T) {
		t.Parallel()

		binder := &recordingBinder{bindErr: errors.New("store unreachable")}
		var seen string
		mw := tenant.Middleware(
			tenant.NewChainResolver(tenant.NewHeaderResolver("")),
			tenant.WithSessionBinder(binder),
		)

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("X-Tenant-ID", "acme")
		rec := httptest.NewRecorder()
		mw(newHandler(&seen)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "acme", seen)
		assert.Zero(t, binder.unbinds, "nothing was bound, nothing to unbind")
	})

	t.Run("unbind runs on panic", func(t *testing.T) {
		t.Parallel()

		binder := &recordingBinder{}
		mw := tenant.Middleware(
			tenant.NewChainResolver(tenant.NewHeaderResolver("")),
			tenant.WithSessionBinder(binder),
		)
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("X-Tenant-ID", "acme")

		require.Panics(t, func() {
			handler.ServeHTTP(httptest.NewRecorder(), req)
		})
		assert.Equal(t, 1, binder.unbinds, "unbind must run even when the handler panics")
	})

	t.Run("skip paths bypass resolution and binding", func(t *testing.T) {
		t.Parallel()

		binder := &recordingBinder{}
		mw := tenant.Middleware(
			tenant.NewChainResolver(tenant.NewHeaderResolver("")),
			tenant.WithSessionBinder(binder),
			tenant.WithSkipPaths("/health", "/metrics"),
		)

		var hadTenant bool
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hadTenant = tenant.HasID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Tenant-ID", "acme")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.False(t, hadTenant)
		assert.Empty(t, rec.Header().Get("X-Tenant-ID"))
		assert.Empty(t, binder.bound)
	})

	t.Run("concurrent requests stay isolated", func(t *testing.T) {
		t.Parallel()

		mw := tenant.Middleware(tenant.NewChainResolver(tenant.NewHeaderResolver("")))

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(tenant.CurrentID(r.Context())))
		}))

		var wg sync.WaitGroup
		for _, id := range []string{"tenant-a", "tenant-b"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 50 {
					req := httptest.NewRequest(http.MethodGet, "/users", nil)
					req.Header.Set("X-Tenant-ID", id)
					rec := httptest.NewRecorder()
					handler.ServeHTTP(rec, req)
					assert.Equal(t, id, rec.Body.String())
				}
			}()
		}
		wg.Wait()
	})
}
