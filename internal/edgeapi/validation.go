package edgeapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/timel-e/core/internal/apperr"
	"github.com/timel-e/core/internal/casing"
)

var validate = validator.New()

// registerRequest, loginRequest and friends exist purely to carry "validate"
// tags: the body sent on to internal/dclient is still the plain snake_case
// map produced by readJSON, these structs never leave this package.

type registerRequest struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	EmailAddress string `json:"emailAddress" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	EmailAddress string `json:"emailAddress" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type changeEmailRequest struct {
	NewEmailAddress string `json:"newEmailAddress" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
}

type addCartItemRequest struct {
	ProductID int32 `json:"productId" validate:"required"`
	Quantity  int32 `json:"quantity" validate:"required,gt=0"`
}

// setQuantityRequest has no "required" tag on Quantity: a request setting
// quantity to 0 is how an item is removed from the cart without deleting
// the cart row, so 0 is a valid value here (unlike addCartItemRequest,
// where 0 would mean "add nothing").
type setQuantityRequest struct {
	Quantity int32 `json:"quantity" validate:"gte=0"`
}

// readValidatedJSON decodes the request body into dst for struct-tag
// validation, then returns the same body as the snake_case map the rest of
// the handler chain expects. Both decodes read the same bytes: the body is
// small (a handful of profile/cart fields) so buffering it twice costs
// nothing compared to the round trip to the data gateway that follows.
func readValidatedJSON(r *http.Request, dst any) (map[string]any, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, "malformed request body", err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, "malformed request body", err)
	}
	if err := validate.Struct(dst); err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, "validation failed: "+err.Error(), err)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, "malformed request body", err)
	}
	snake, _ := casing.ToSnakeKeys(body).(map[string]any)
	return snake, nil
}
