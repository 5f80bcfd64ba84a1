package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saasbase/saasbase/internal/api"
	"github.com/saasbase/saasbase/pkg/requestid"
)

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("writes the full envelope", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
		req = req.WithContext(requestid.WithContext(req.Context(), "req-42"))
		rec := httptest.NewRecorder()

		api.Error(rec, req, http.StatusNotFound, "user not found")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "Not Found", resp.Error)
		assert.Equal(t, "user not found", resp.Message)
		assert.Equal(t, "req-42", resp.TraceID)
		assert.Equal(t, "/api/v1/users", resp.Path)
		assert.Equal(t, http.MethodPost, resp.Method)
		assert.False(t, resp.Timestamp.IsZero())
	})

	t.Run("omits trace id when the context has none", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		rec := httptest.NewRecorder()

		api.Error(rec, req, http.StatusInternalServerError, "boom")

		assert.NotContains(t, rec.Body.String(), "trace_id")
	})
}

func TestBind(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name  string `json:"name" validate:"required,min=2"`
		Email string `json:"email" validate:"required,email"`
		Age   *int   `json:"age" validate:"omitempty,gte=0,lte=150"`
	}

	bind := func(t *testing.T, body string) (*httptest.ResponseRecorder, payload, bool) {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		var dst payload
		ok := api.Bind(rec, req, &dst)
		return rec, dst, ok
	}

	t.Run("valid payload", func(t *testing.T) {
		t.Parallel()

		rec, dst, ok := bind(t, `{"name":"Alice","email":"alice@example.com","age":30}`)
		require.True(t, ok)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, "Alice", dst.Name)
		require.NotNil(t, dst.Age)
		assert.Equal(t, 30, *dst.Age)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()

		rec, _, ok := bind(t, `{"name":`)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "malformed request body")
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		t.Parallel()

		rec, _, ok := bind(t, `{"name":"Alice","email":"alice@example.com","admin":true}`)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("field errors use json names", func(t *testing.T) {
		t.Parallel()

		rec, _, ok := bind(t, `{"name":"A","email":"not-an-email","age":200}`)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "validation failed", resp.Message)
		assert.Contains(t, resp.FieldErrors, "name")
		assert.Contains(t, resp.FieldErrors, "email")
		assert.Contains(t, resp.FieldErrors, "age")
		assert.Equal(t, "must be a valid email address", resp.FieldErrors["email"])
	})

	t.Run("missing required fields", func(t *testing.T) {
		t.Parallel()

		rec, _, ok := bind(t, `{}`)
		require.False(t, ok)

		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "is required", resp.FieldErrors["name"])
		assert.Equal(t, "is required", resp.FieldErrors["email"])
	})
}
