package edgeapi

import (
	"encoding/json"
	"net/http"

	"github.com/timel-e/core/internal/apperr"
	"github.com/timel-e/core/internal/casing"
)

// readJSON decodes a camelCase JSON request body into a snake_case map,
// ready to hand to internal/dclient. An empty body decodes to an empty map
// rather than failing, since a caller such as checkout may send no body at
// all.
func readJSON(r *http.Request) (map[string]any, error) {
	if r.ContentLength == 0 {
		return map[string]any{}, nil
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, "malformed request body", err)
	}
	if body == nil {
		body = map[string]any{}
	}
	snake, _ := casing.ToSnakeKeys(body).(map[string]any)
	return snake, nil
}

// writeResult wraps a snake_case response map (typically one returned
// verbatim by internal/dclient) in the success envelope the external
// contract promises: {"message": <string>, "data": <object|array>}.
func writeResult(w http.ResponseWriter, status int, message string, v any) {
	writeJSON(w, status, map[string]any{
		"message": message,
		"data":    casing.ToCamelKeys(v),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
