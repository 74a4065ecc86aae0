package dclient

import (
	"context"
	"fmt"
	"net/http"
)

// Register and the rest of the per-operation wrappers are thin sugar over
// Call: each knows the path and method for one gatewayapi route and nothing
// about serialization beyond what Call already does.

func (c *Client) Register(ctx context.Context, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, "/internal/users/register", body)
}

func (c *Client) Login(ctx context.Context, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, "/internal/users/login", body)
}

func (c *Client) GetProfile(ctx context.Context, userID string) (map[string]any, error) {
	return c.Call(ctx, http.MethodGet, fmt.Sprintf("/internal/users/%s", userID), nil)
}

func (c *Client) UpdateProfile(ctx context.Context, userID string, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPatch, fmt.Sprintf("/internal/users/%s/profile", userID), body)
}

func (c *Client) UpdateNotificationPreferences(ctx context.Context, userID string, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPatch, fmt.Sprintf("/internal/users/%s/notification-preferences", userID), body)
}

func (c *Client) ChangePassword(ctx context.Context, userID string, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, fmt.Sprintf("/internal/users/%s/change-password", userID), body)
}

func (c *Client) ChangeEmail(ctx context.Context, userID string, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, fmt.Sprintf("/internal/users/%s/change-email", userID), body)
}

func (c *Client) DeleteUser(ctx context.Context, userID string, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodDelete, fmt.Sprintf("/internal/users/%s", userID), body)
}

func (c *Client) MarkNotificationsViewed(ctx context.Context, userID string) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, fmt.Sprintf("/internal/users/%s/notifications/mark-viewed", userID), nil)
}

func (c *Client) ListNotifications(ctx context.Context, userID string, query string) (map[string]any, error) {
	return c.Call(ctx, http.MethodGet, fmt.Sprintf("/internal/users/%s/notifications%s", userID, query), nil)
}

func (c *Client) BrowseProducts(ctx context.Context, query string) (map[string]any, error) {
	return c.Call(ctx, http.MethodGet, "/internal/products/"+query, nil)
}

func (c *Client) GetProduct(ctx context.Context, productID string) (map[string]any, error) {
	return c.Call(ctx, http.MethodGet, fmt.Sprintf("/internal/products/%s", productID), nil)
}

func (c *Client) BatchProducts(ctx context.Context, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, "/internal/products/batch", body)
}

func (c *Client) ProductsByDepartment(ctx context.Context, departmentID string) (map[string]any, error) {
	return c.Call(ctx, http.MethodGet, fmt.Sprintf("/internal/departments/%s/products", departmentID), nil)
}

func (c *Client) ProductsByAisle(ctx context.Context, aisleID string) (map[string]any, error) {
	return c.Call(ctx, http.MethodGet, fmt.Sprintf("/internal/aisles/%s/products", aisleID), nil)
}

func (c *Client) GetCart(ctx context.Context, userID string) (map[string]any, error) {
	return c.Call(ctx, http.MethodGet, fmt.Sprintf("/internal/carts/%s", userID), nil)
}

func (c *Client) CreateCart(ctx context.Context, userID string, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, fmt.Sprintf("/internal/carts/%s", userID), body)
}

func (c *Client) ReplaceCart(ctx context.Context, userID string, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPut, fmt.Sprintf("/internal/carts/%s", userID), body)
}

func (c *Client) AddCartItem(ctx context.Context, userID string, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, fmt.Sprintf("/internal/carts/%s/items", userID), body)
}

func (c *Client) SetCartItemQuantity(ctx context.Context, userID, productID string, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPut, fmt.Sprintf("/internal/carts/%s/items/%s", userID, productID), body)
}

func (c *Client) RemoveCartItem(ctx context.Context, userID, productID string) (map[string]any, error) {
	return c.Call(ctx, http.MethodDelete, fmt.Sprintf("/internal/carts/%s/items/%s", userID, productID), nil)
}

func (c *Client) ClearCart(ctx context.Context, userID string) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, fmt.Sprintf("/internal/carts/%s/clear", userID), nil)
}

func (c *Client) DeleteCart(ctx context.Context, userID string) (map[string]any, error) {
	return c.Call(ctx, http.MethodDelete, fmt.Sprintf("/internal/carts/%s", userID), nil)
}

func (c *Client) Checkout(ctx context.Context, userID string, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, fmt.Sprintf("/internal/orders/checkout/%s", userID), body)
}

func (c *Client) CreateDirectOrder(ctx context.Context, userID string, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, fmt.Sprintf("/internal/orders/direct/%s", userID), body)
}

func (c *Client) TransitionOrder(ctx context.Context, orderID string, body map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, fmt.Sprintf("/internal/orders/%s/transition", orderID), body)
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (map[string]any, error) {
	return c.Call(ctx, http.MethodGet, fmt.Sprintf("/internal/orders/%s", orderID), nil)
}

func (c *Client) ListOrdersByUser(ctx context.Context, userID string, query string) (map[string]any, error) {
	return c.Call(ctx, http.MethodGet, fmt.Sprintf("/internal/orders/by-user/%s%s", userID, query), nil)
}
