package edgeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleRegister_RejectsMissingFields(t *testing.T) {
	cfg := newTestConfig(t, nil, nil)
	router := Router(cfg)

	payload := map[string]any{"firstName": "Ada"}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON(t, rec)
	assert.Contains(t, body["detail"], "validation failed")
}

func TestHandleAddCartItem_RejectsZeroQuantity(t *testing.T) {
	cfg := newTestConfig(t, nil, nil)
	router := Router(cfg)

	payload := map[string]any{"productId": 1, "quantity": 0}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/cart/6ba7b810-9dad-11d1-80b4-00c04fd430c8/items", bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadValidatedJSON_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	_, err := readValidatedJSON(req, &registerRequest{})
	require.Error(t, err)
}
