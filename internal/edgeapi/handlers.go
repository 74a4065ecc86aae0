package edgeapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/timel-e/core/internal/apperr"
)

// --- identity ---

func (cfg *Config) handleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := readValidatedJSON(r, &registerRequest{})
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.Register(r.Context(), body)
	if err != nil {
		cfg.logFailure(r.Context(), r, "register", "user registration failed", err)
		writeError(w, err)
		return
	}
	cfg.logSuccess(r.Context(), r, "register", "user registered")
	writeResult(w, http.StatusOK, "user registered", data)
}

func (cfg *Config) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := readValidatedJSON(r, &loginRequest{})
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.Login(r.Context(), body)
	if err != nil {
		cfg.logFailure(r.Context(), r, "login", "login failed", err)
		writeError(w, err)
		return
	}
	cfg.logSuccess(r.Context(), r, "login", "login successful")
	writeResult(w, http.StatusOK, "login successful", data)
}

func (cfg *Config) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, "logged out", map[string]any{"logged_out": true})
}

func (cfg *Config) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.GetProfile(r.Context(), id.String())
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "profile retrieved", data)
}

func (cfg *Config) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := readJSON(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.UpdateProfile(r.Context(), id.String(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "profile updated", data)
}

func (cfg *Config) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := readJSON(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.DeleteUser(r.Context(), id.String(), body)
	if err != nil {
		cfg.logFailure(r.Context(), r, "delete_user", "account deletion failed", err)
		writeError(w, err)
		return
	}
	cfg.logSuccess(r.Context(), r, "delete_user", "account deleted")
	writeResult(w, http.StatusOK, "account deleted", data)
}

func (cfg *Config) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := readValidatedJSON(r, &changePasswordRequest{})
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.ChangePassword(r.Context(), id.String(), body)
	if err != nil {
		cfg.logFailure(r.Context(), r, "change_password", "password change failed", err)
		writeError(w, err)
		return
	}
	cfg.logSuccess(r.Context(), r, "change_password", "password changed")
	writeResult(w, http.StatusOK, "password changed", data)
}

func (cfg *Config) handleChangeEmail(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := readValidatedJSON(r, &changeEmailRequest{})
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.ChangeEmail(r.Context(), id.String(), body)
	if err != nil {
		cfg.logFailure(r.Context(), r, "change_email", "email change failed", err)
		writeError(w, err)
		return
	}
	cfg.logSuccess(r.Context(), r, "change_email", "email changed")
	writeResult(w, http.StatusOK, "email changed", data)
}

func (cfg *Config) handleGetNotificationSettings(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.GetProfile(r.Context(), id.String())
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "notification settings retrieved", data)
}

func (cfg *Config) handleUpdateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := readJSON(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.UpdateNotificationPreferences(r.Context(), id.String(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "notification settings updated", data)
}

func (cfg *Config) handleOrderStatusNotifications(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p := parsePage(r)
	data, err := cfg.DGateway.ListNotifications(r.Context(), id.String(), p.queryString())
	if err != nil {
		writeError(w, err)
		return
	}
	if _, markErr := cfg.DGateway.MarkNotificationsViewed(r.Context(), id.String()); markErr != nil {
		cfg.Logger.WithError(markErr).Warn("marking notifications viewed failed")
	}
	writeResult(w, http.StatusOK, "notifications retrieved", data)
}

// --- catalog ---

func (cfg *Config) handleBrowseProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := parsePage(r)
	query := p.queryString()
	if search := q.Get("search"); search != "" {
		query += "&search=" + search
	}
	if sort := q.Get("sort"); sort != "" {
		query += "&sort=" + sort
	}
	for _, dept := range q["categories"] {
		query += "&department=" + dept
	}
	data, err := cfg.DGateway.BrowseProducts(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "products retrieved", data)
}

func (cfg *Config) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	if _, err := strconv.ParseInt(raw, 10, 32); err != nil {
		writeError(w, apperr.New(apperr.InvalidIdFormat, "malformed product id"))
		return
	}
	data, err := cfg.DGateway.GetProduct(r.Context(), raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "product retrieved", data)
}

func (cfg *Config) handleProductsByDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := departmentID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.ProductsByDepartment(r.Context(), strconv.Itoa(int(id)))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "products retrieved", data)
}

func (cfg *Config) handleProductsByAisle(w http.ResponseWriter, r *http.Request) {
	id, err := aisleID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.ProductsByAisle(r.Context(), strconv.Itoa(int(id)))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "products retrieved", data)
}

// --- cart ---

func (cfg *Config) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	body, err := readJSON(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := userIDFromBody(body)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.CreateCart(r.Context(), id, body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusCreated, "cart created", data)
}

func userIDFromBody(body map[string]any) (string, error) {
	v, ok := body["user_id"].(string)
	if !ok || v == "" {
		return "", apperr.New(apperr.InvalidInput, "userId is required")
	}
	return v, nil
}

func (cfg *Config) handleGetCart(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.GetCart(r.Context(), id.String())
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "cart retrieved", data)
}

func (cfg *Config) handleReplaceCart(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := readJSON(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.ReplaceCart(r.Context(), id.String(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "cart replaced", data)
}

func (cfg *Config) handleDeleteCart(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.DeleteCart(r.Context(), id.String())
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "cart deleted", data)
}

func (cfg *Config) handleClearCart(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.ClearCart(r.Context(), id.String())
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "cart cleared", data)
}

func (cfg *Config) handleCheckout(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := readJSON(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.Checkout(r.Context(), id.String(), body)
	if err != nil {
		cfg.logFailure(r.Context(), r, "checkout", "checkout failed", err)
		writeError(w, err)
		return
	}
	cfg.logSuccess(r.Context(), r, "checkout", "order created")
	writeResult(w, http.StatusOK, "order created", data)
}

func (cfg *Config) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := readValidatedJSON(r, &addCartItemRequest{})
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.AddCartItem(r.Context(), id.String(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "item added", data)
}

func (cfg *Config) handleSetCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	pid, err := productID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := readValidatedJSON(r, &setQuantityRequest{})
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.SetCartItemQuantity(r.Context(), id.String(), strconv.Itoa(int(pid)), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "item quantity updated", data)
}

func (cfg *Config) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	pid, err := productID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.RemoveCartItem(r.Context(), id.String(), strconv.Itoa(int(pid)))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "item removed", data)
}

// --- orders ---

func (cfg *Config) handleCreateDirectOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readJSON(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := userIDFromBody(body)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.CreateDirectOrder(r.Context(), id, body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "order created", data)
}

func (cfg *Config) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := cfg.DGateway.GetOrder(r.Context(), strconv.FormatInt(id, 10))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "order retrieved", data)
}

func (cfg *Config) handleListOrdersByUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p := parsePage(r)
	data, err := cfg.DGateway.ListOrdersByUser(r.Context(), id.String(), p.queryString())
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "orders retrieved", data)
}

// --- recommender ---

func (cfg *Config) handlePredictions(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result := cfg.Recommender.Predict(r.Context(), id.String())
	predictions := make([]any, len(result.Predictions))
	for i, p := range result.Predictions {
		predictions[i] = map[string]any{"product_id": p.ProductID, "score": p.Score}
	}
	message := "predictions retrieved"
	if !result.Available {
		message = result.Message
	}
	writeResult(w, http.StatusOK, message, map[string]any{
		"predictions": predictions,
		"total":       len(predictions),
	})
}
