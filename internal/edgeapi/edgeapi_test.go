package edgeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/timel-e/core/internal/dclient"
	"github.com/timel-e/core/internal/recommender"
	"github.com/timel-e/core/utils"
)

func newTestConfig(t *testing.T, dHandler http.HandlerFunc, mHandler http.HandlerFunc) *Config {
	t.Helper()
	var dURL, mURL string
	if dHandler != nil {
		dSrv := httptest.NewServer(dHandler)
		t.Cleanup(dSrv.Close)
		dURL = dSrv.URL
	}
	if mHandler != nil {
		mSrv := httptest.NewServer(mHandler)
		t.Cleanup(mSrv.Close)
		mURL = mSrv.URL
	}
	return &Config{
		DGateway:       dclient.New(dURL, time.Second),
		Recommender:    recommender.New(mURL),
		Logger:         utils.InitLogger(),
		AllowedOrigins: []string{"*"},
	}
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func msgpackHandler(t *testing.T, status int, body map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/msgpack")
		w.WriteHeader(status)
		_ = msgpack.NewEncoder(w).Encode(body)
	}
}

func TestHandleHealth_OK(t *testing.T) {
	cfg := newTestConfig(t, msgpackHandler(t, http.StatusOK, map[string]any{"status": "ok"}), nil)
	router := Router(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleHealth_DegradedWhenDUnreachable(t *testing.T) {
	cfg := newTestConfig(t, nil, nil)
	cfg.DGateway = dclient.New("http://127.0.0.1:1", 20*time.Millisecond)
	router := Router(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleGetProfile_CamelizesResponse(t *testing.T) {
	cfg := newTestConfig(t, msgpackHandler(t, http.StatusOK, map[string]any{
		"external_id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"first_name":  "Ada",
		"has_active_cart": false,
	}), nil)
	router := Router(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/users/6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Ada", data["firstName"])
	assert.Contains(t, data, "hasActiveCart")
}

func TestHandleGetProfile_InvalidUUIDRejected(t *testing.T) {
	cfg := newTestConfig(t, nil, nil)
	router := Router(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/users/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeJSON(t, rec)
	assert.NotEmpty(t, body["detail"])
}

func TestHandleGetOrder_NotFoundPropagatesAsDetail(t *testing.T) {
	cfg := newTestConfig(t, msgpackHandler(t, http.StatusNotFound, map[string]any{
		"error": map[string]any{"code": "NOT_FOUND", "message": "order not found"},
	}), nil)
	router := Router(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "order not found", body["detail"])
}

func TestHandleRegister_RequestBodySnakeCased(t *testing.T) {
	var captured map[string]any
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		_ = msgpack.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/msgpack")
		w.WriteHeader(http.StatusOK)
		_ = msgpack.NewEncoder(w).Encode(map[string]any{"external_id": "x"})
	}, nil)
	router := Router(cfg)

	payload := map[string]any{"firstName": "Ada", "lastName": "Lovelace", "emailAddress": "ada@example.com", "password": "p@ss1234"}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", captured["first_name"])
}

func TestHandlePredictions_DegradesGracefully(t *testing.T) {
	cfg := newTestConfig(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	router := Router(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/predictions/user/6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 0, data["total"])
}
