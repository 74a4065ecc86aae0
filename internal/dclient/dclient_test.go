package dclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/timel-e/core/internal/apperr"
)

func newTestServer(t *testing.T, status int, body map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(status)
		_ = msgpack.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCall_SuccessDecodesBody(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, map[string]any{"status": "ok"})
	c := New(srv.URL, time.Second)

	out, err := c.Call(context.Background(), http.MethodGet, "/internal/healthz", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out["status"])
}

func TestCall_ErrorStatusMapsToAppError(t *testing.T) {
	srv := newTestServer(t, http.StatusConflict, map[string]any{
		"error": map[string]any{"code": "CONFLICT", "message": "cart is empty"},
	})
	c := New(srv.URL, time.Second)

	_, err := c.Call(context.Background(), http.MethodPost, "/internal/orders/checkout/1", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.CodeOf(err))
	assert.Equal(t, "cart is empty", apperr.MessageOf(err))
}

func TestCall_UnreachableServer(t *testing.T) {
	c := New("http://127.0.0.1:1", 50*time.Millisecond)
	_, err := c.Call(context.Background(), http.MethodGet, "/internal/healthz", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.UpstreamUnavailable, apperr.CodeOf(err))
}

func TestHealth_PropagatesError(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError, map[string]any{})
	c := New(srv.URL, time.Second)

	err := c.Health(context.Background())
	require.Error(t, err)
}
