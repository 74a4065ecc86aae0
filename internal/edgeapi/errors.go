package edgeapi

import (
	"net/http"

	"github.com/timel-e/core/internal/apperr"
)

// statusFor is the Edge's own code -> HTTP status table for the external
// contract. It is independent of gatewayapi's internal table: D and E are
// free to report different statuses for the same AppError.Code.
func statusFor(code apperr.Code) int {
	switch code {
	case apperr.InvalidIdFormat:
		return http.StatusUnprocessableEntity
	case apperr.InvalidInput, apperr.EmptyCart, apperr.IllegalTransition:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.AuthFailed:
		return http.StatusUnauthorized
	case apperr.UpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders the failure envelope the external contract promises:
// {"detail": <string>} at the HTTP status matching the error's code. The
// detail is always AppError.Message, never the wrapped SQL or stack text.
func writeError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	writeJSON(w, statusFor(code), map[string]any{
		"detail": apperr.MessageOf(err),
	})
}
