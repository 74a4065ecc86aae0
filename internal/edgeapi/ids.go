// Package edgeapi is the browser-facing HTTP surface: camelCase JSON over
// chi, users addressed by external UUID, talking to the Data
// Gateway exclusively through internal/dclient.
package edgeapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/timel-e/core/internal/apperr"
)

// userID parses the {userId} path param as a UUID, the only externally
// visible identifier for a user. A malformed value is InvalidIdFormat, never
// a 500: browsers retry and malform URLs all the time.
func userID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "userId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.InvalidIdFormat, "malformed user id")
	}
	return id, nil
}

func orderID(r *http.Request) (int64, error) {
	return intParam(r, "orderId")
}

func productID(r *http.Request) (int32, error) {
	v, err := intParam(r, "productId")
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func departmentID(r *http.Request) (int32, error) {
	v, err := intParam(r, "departmentId")
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func aisleID(r *http.Request) (int32, error) {
	v, err := intParam(r, "aisleId")
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func intParam(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.InvalidIdFormat, "malformed "+key)
	}
	return v, nil
}
