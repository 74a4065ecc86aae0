package gatewayapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/timel-e/core/internal/apperr"
	"github.com/timel-e/core/internal/cartsvc"
	"github.com/timel-e/core/internal/catalog"
	"github.com/timel-e/core/internal/identity"
	"github.com/timel-e/core/internal/ordersvc"
)

// Config bundles the domain services the gateway's handlers dispatch into.
// One instance is built in cmd/dgateway and wired into the router once.
type Config struct {
	Identity *identity.Service
	Cart     *cartsvc.Service
	Order    *ordersvc.Service
	Catalog  *catalog.Service
}

// Router builds the chi router for D's internal, msgpack-encoded surface.
// Every route is reachable only from the Edge, never from a browser.
func Router(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Get("/internal/healthz", handleHealthz)

	r.Route("/internal/users", func(r chi.Router) {
		r.Post("/register", cfg.handleRegister)
		r.Post("/login", cfg.handleLogin)
		r.Get("/{userID}", cfg.handleGetProfile)
		r.Patch("/{userID}/profile", cfg.handleUpdateProfile)
		r.Patch("/{userID}/notification-preferences", cfg.handleUpdateNotificationPreferences)
		r.Post("/{userID}/change-password", cfg.handleChangePassword)
		r.Post("/{userID}/change-email", cfg.handleChangeEmail)
		r.Delete("/{userID}", cfg.handleDeleteUser)
		r.Post("/{userID}/notifications/mark-viewed", cfg.handleMarkNotificationsViewed)
		r.Get("/{userID}/notifications", cfg.handleListNotifications)
	})

	r.Route("/internal/products", func(r chi.Router) {
		r.Get("/", cfg.handleBrowseProducts)
		r.Get("/{productID}", cfg.handleGetProduct)
		r.Post("/batch", cfg.handleBatchProducts)
	})
	r.Get("/internal/departments/{departmentID}/products", cfg.handleProductsByDepartment)
	r.Get("/internal/aisles/{aisleID}/products", cfg.handleProductsByAisle)

	r.Route("/internal/carts", func(r chi.Router) {
		r.Get("/{userID}", cfg.handleGetCart)
		r.Post("/{userID}", cfg.handleCreateCart)
		r.Put("/{userID}", cfg.handleReplaceCart)
		r.Post("/{userID}/items", cfg.handleAddCartItem)
		r.Put("/{userID}/items/{productID}", cfg.handleSetCartItemQuantity)
		r.Delete("/{userID}/items/{productID}", cfg.handleRemoveCartItem)
		r.Post("/{userID}/clear", cfg.handleClearCart)
		r.Delete("/{userID}", cfg.handleDeleteCart)
	})

	r.Route("/internal/orders", func(r chi.Router) {
		r.Post("/checkout/{userID}", cfg.handleCheckout)
		r.Post("/direct/{userID}", cfg.handleCreateDirect)
		r.Post("/{orderID}/transition", cfg.handleTransitionOrder)
		r.Get("/{orderID}", cfg.handleGetOrder)
		r.Get("/by-user/{userID}", cfg.handleListOrdersByUser)
	})

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]any{"status": "ok"})
}

func pathExternalID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.InvalidIdFormat, "malformed user id")
	}
	return id, nil
}

func pathInt64(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.InvalidIdFormat, "malformed id")
	}
	return id, nil
}

func pathInt32(r *http.Request, param string) (int32, error) {
	id, err := pathInt64(r, param)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}

// --- identity ---

func (cfg *Config) handleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := cfg.Identity.Register(r.Context(), identity.RegisterParams{
		FirstName:                     getString(body, "first_name"),
		LastName:                      getString(body, "last_name"),
		Email:                         getString(body, "email"),
		Password:                      getString(body, "password"),
		DaysBetweenOrderNotifications: getInt32(body, "days_between_order_notifications"),
		OrderNotificationsViaEmail:    getBool(body, "order_notifications_via_email"),
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, profileToMap(p))
}

func (cfg *Config) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := cfg.Identity.Login(r.Context(), getString(body, "email"), getString(body, "password"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, profileToMap(p))
}

func (cfg *Config) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	extID, err := pathExternalID(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := cfg.Identity.GetByExternalID(r.Context(), extID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, profileToMap(p))
}

func (cfg *Config) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	extID, err := pathExternalID(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	patch := identity.ProfilePatch{
		FirstName:      getStringPtr(body, "first_name"),
		LastName:       getStringPtr(body, "last_name"),
		AddressStreet:  getStringPtr(body, "address_street"),
		AddressCity:    getStringPtr(body, "address_city"),
		AddressPostal:  getStringPtr(body, "address_postal"),
		AddressCountry: getStringPtr(body, "address_country"),
	}
	p, err := cfg.Identity.UpdateProfile(r.Context(), extID, patch)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, profileToMap(p))
}

func (cfg *Config) handleUpdateNotificationPreferences(w http.ResponseWriter, r *http.Request) {
	extID, err := pathExternalID(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	patch := identity.NotificationPreferencesPatch{}
	if _, ok := body["days_between_order_notifications"]; ok {
		v := getInt32(body, "days_between_order_notifications")
		patch.DaysBetweenOrderNotifications = &v
	}
	if _, ok := body["order_notifications_via_email"]; ok {
		v := getBool(body, "order_notifications_via_email")
		patch.OrderNotificationsViaEmail = &v
	}
	p, err := cfg.Identity.UpdateNotificationPreferences(r.Context(), extID, patch)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, profileToMap(p))
}

func (cfg *Config) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	extID, err := pathExternalID(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	err = cfg.Identity.ChangePassword(r.Context(), extID, getString(body, "current_password"), getString(body, "new_password"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, map[string]any{"status": "ok"})
}

func (cfg *Config) handleChangeEmail(w http.ResponseWriter, r *http.Request) {
	extID, err := pathExternalID(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	err = cfg.Identity.ChangeEmail(r.Context(), extID, getString(body, "current_password"), getString(body, "new_email"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, map[string]any{"status": "ok"})
}

func (cfg *Config) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	extID, err := pathExternalID(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := cfg.Identity.DeleteUser(r.Context(), extID, getString(body, "password")); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, map[string]any{"status": "ok"})
}

func (cfg *Config) handleMarkNotificationsViewed(w http.ResponseWriter, r *http.Request) {
	extID, err := pathExternalID(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := cfg.Identity.MarkNotificationsViewed(r.Context(), extID); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, map[string]any{"status": "ok"})
}

func (cfg *Config) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	extID, err := pathExternalID(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, offset := parsePagination(r)
	page, err := cfg.Identity.ListNotifications(r.Context(), extID, limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, notificationPageToMap(page))
}

// --- catalog ---

func (cfg *Config) handleBrowseProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := parsePagination(r)
	var aisleID *int32
	if raw := q.Get("aisle_id"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
			a := int32(v)
			aisleID = &a
		}
	}
	page, err := cfg.Catalog.Browse(r.Context(), catalog.BrowseParams{
		Departments: q["department"],
		AisleID:     aisleID,
		Search:      q.Get("search"),
		Sort:        q.Get("sort"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, pageToMap(page))
}

func (cfg *Config) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathInt32(r, "productID")
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := cfg.Catalog.GetByID(r.Context(), productID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, productToMap(p))
}

func (cfg *Config) handleProductsByDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, err := pathInt32(r, "departmentID")
	if err != nil {
		writeErr(w, err)
		return
	}
	items, err := cfg.Catalog.ByDepartment(r.Context(), departmentID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, map[string]any{"items": productsToSlice(items)})
}

func (cfg *Config) handleProductsByAisle(w http.ResponseWriter, r *http.Request) {
	aisleID, err := pathInt32(r, "aisleID")
	if err != nil {
		writeErr(w, err)
		return
	}
	items, err := cfg.Catalog.ByAisle(r.Context(), aisleID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, map[string]any{"items": productsToSlice(items)})
}

func (cfg *Config) handleBatchProducts(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	raw, _ := body["product_ids"].([]any)
	ids := make([]int32, 0, len(raw))
	for _, v := range raw {
		ids = append(ids, int32(toFloat(v)))
	}
	items, err := cfg.Catalog.BatchByIDs(r.Context(), ids)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, map[string]any{"items": productsToSlice(items)})
}

func toFloat(v any) float64 {
	return getNumber(map[string]any{"v": v}, "v")
}

func parsePagination(r *http.Request) (limit, offset int32) {
	q := r.URL.Query()
	limit = 20
	offset = 0
	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
			limit = int32(v)
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
			offset = int32(v)
		}
	}
	return limit, offset
}

// --- cart ---

func (cfg *Config) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	v, err := cfg.Cart.Get(r.Context(), userID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, cartViewToMap(v))
}

func (cfg *Config) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	v, err := cfg.Cart.Create(r.Context(), userID, itemsFromRequest(getItems(body, "items")))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, cartViewToMap(v))
}

func (cfg *Config) handleReplaceCart(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	v, err := cfg.Cart.Replace(r.Context(), userID, itemsFromRequest(getItems(body, "items")))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, cartViewToMap(v))
}

func (cfg *Config) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	item := cartsvc.Item{ProductID: getInt32(body, "product_id"), Quantity: getInt32(body, "quantity")}
	v, err := cfg.Cart.AddItem(r.Context(), userID, item)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, cartViewToMap(v))
}

func (cfg *Config) handleSetCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	productID, err := pathInt32(r, "productID")
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	v, err := cfg.Cart.SetItemQuantity(r.Context(), userID, productID, getInt32(body, "quantity"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, cartViewToMap(v))
}

func (cfg *Config) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	productID, err := pathInt32(r, "productID")
	if err != nil {
		writeErr(w, err)
		return
	}
	v, err := cfg.Cart.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, cartViewToMap(v))
}

func (cfg *Config) handleClearCart(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	v, err := cfg.Cart.ClearCart(r.Context(), userID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, cartViewToMap(v))
}

func (cfg *Config) handleDeleteCart(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := cfg.Cart.DeleteCart(r.Context(), userID); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, map[string]any{"status": "ok"})
}

// --- orders ---

func (cfg *Config) handleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	v, err := cfg.Order.Checkout(r.Context(), userID, deliveryFromRequest(body))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, orderViewToMap(v))
}

func (cfg *Config) handleCreateDirect(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	v, err := cfg.Order.CreateDirect(r.Context(), userID, deliveryFromRequest(body), orderItemInputsFromRequest(getItems(body, "items")))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, orderViewToMap(v))
}

func (cfg *Config) handleTransitionOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt64(r, "orderID")
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	v, err := cfg.Order.Transition(r.Context(), orderID, getString(body, "to"), getString(body, "changed_by"), getString(body, "note"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, orderViewToMap(v))
}

func (cfg *Config) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt64(r, "orderID")
	if err != nil {
		writeErr(w, err)
		return
	}
	v, err := cfg.Order.Get(r.Context(), orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, orderViewToMap(v))
}

func (cfg *Config) handleListOrdersByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, offset := parsePagination(r)
	page, err := cfg.Order.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}
	orders := make([]map[string]any, len(page.Orders))
	for i, o := range page.Orders {
		orders[i] = orderViewToMap(o)
	}
	writeOK(w, map[string]any{"orders": orders, "total": page.Total})
}
