// Package gatewayapi is the Data Gateway's internal HTTP surface: a
// snake_case, MessagePack-encoded contract meant for the Edge API only, no
// browser ever talks to it directly. Every handler receives and returns a
// plain map[string]any — there is no typed request/response schema on this
// side of the wire, since the Edge is the only caller and already knows the
// shape of each operation.
package gatewayapi

import (
	"net/http"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/timel-e/core/internal/apperr"
)

const contentTypeMsgpack = "application/msgpack"

func readBody(r *http.Request) (map[string]any, error) {
	var body map[string]any
	if r.ContentLength == 0 {
		return map[string]any{}, nil
	}
	dec := msgpack.NewDecoder(r.Body)
	if err := dec.Decode(&body); err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, "malformed request body", err)
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

func writeOK(w http.ResponseWriter, v map[string]any) {
	w.Header().Set("Content-Type", contentTypeMsgpack)
	w.WriteHeader(http.StatusOK)
	_ = msgpack.NewEncoder(w).Encode(v)
}

// statusFor maps an apperr.Code to the HTTP status D reports to the Edge.
// The Edge holds its own, independently-sourced mapping table for the
// external contract; this one only needs to be internally consistent.
func statusFor(code apperr.Code) int {
	switch code {
	case apperr.InvalidInput, apperr.InvalidIdFormat:
		return http.StatusUnprocessableEntity
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict, apperr.EmptyCart, apperr.IllegalTransition:
		return http.StatusConflict
	case apperr.AuthFailed:
		return http.StatusUnauthorized
	case apperr.UpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	w.Header().Set("Content-Type", contentTypeMsgpack)
	w.WriteHeader(statusFor(code))
	_ = msgpack.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    string(code),
			"message": apperr.MessageOf(err),
		},
	})
}

func getString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func getStringPtr(m map[string]any, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func getInt32(m map[string]any, key string) int32 {
	return int32(getNumber(m, key))
}

func getInt64(m map[string]any, key string) int64 {
	return int64(getNumber(m, key))
}

func getBool(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

// getNumber accepts any numeric representation msgpack may produce
// (int64, uint64, float64) so callers don't need to care which one a given
// encoder chose for a particular literal.
func getNumber(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	default:
		return 0
	}
}

func getItems(m map[string]any, key string) []map[string]any {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if mm, ok := r.(map[string]any); ok {
			out = append(out, mm)
		}
	}
	return out
}
