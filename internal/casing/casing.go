// Package casing translates JSON object trees between the Edge's external
// camelCase contract and the Data Gateway's internal snake_case contract.
// It operates on the generic `any` shape produced by encoding/json and
// msgpack decoding, not on typed structs, so it works uniformly at both
// API boundaries without a struct tag per field.
package casing

import "github.com/go-openapi/inflect"

// ToSnakeKeys recursively rewrites every map key in v from camelCase to
// snake_case, for translating an Edge request body before forwarding it to
// the Data Gateway.
func ToSnakeKeys(v any) any {
	return walk(v, inflect.Underscore)
}

// ToCamelKeys recursively rewrites every map key in v from snake_case to
// camelCase, for translating a Data Gateway response before it reaches an
// Edge client.
func ToCamelKeys(v any) any {
	return walk(v, inflect.CamelizeDownFirst)
}

func walk(v any, rename func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[rename(k)] = walk(val, rename)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = walk(val, rename)
		}
		return out
	default:
		return v
	}
}
