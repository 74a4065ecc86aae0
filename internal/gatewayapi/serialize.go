package gatewayapi

import (
	"github.com/timel-e/core/internal/cartsvc"
	"github.com/timel-e/core/internal/catalog"
	"github.com/timel-e/core/internal/database"
	"github.com/timel-e/core/internal/identity"
	"github.com/timel-e/core/internal/ordersvc"
)

func productToMap(p database.ProductView) map[string]any {
	return map[string]any{
		"product_id":    p.ProductID,
		"product_name":  p.ProductName,
		"aisle_id":      p.AisleID,
		"aisle":         p.Aisle,
		"department_id": p.DepartmentID,
		"department":    p.Department,
		"description":   p.Description.String,
		"price":         p.Price,
		"image_url":     p.ImageURL.String,
		"popularity":    p.Popularity,
		"rating":        p.Rating,
	}
}

func productsToSlice(items []database.ProductView) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, p := range items {
		out[i] = productToMap(p)
	}
	return out
}

func pageToMap(p catalog.Page) map[string]any {
	return map[string]any{
		"items":  productsToSlice(p.Items),
		"total":  p.Total,
		"limit":  p.Limit,
		"offset": p.Offset,
	}
}

func cartItemToMap(it database.CartItemView) map[string]any {
	m := productToMap(it.ProductView)
	m["quantity"] = it.Quantity
	m["add_to_cart_order"] = it.AddToCartOrder
	m["reordered"] = it.Reordered
	return m
}

func cartViewToMap(v cartsvc.View) map[string]any {
	items := make([]map[string]any, len(v.Items))
	for i, it := range v.Items {
		items[i] = cartItemToMap(it)
	}
	return map[string]any{
		"cart_id":    v.CartID,
		"updated_at": v.UpdatedAt,
		"items":      items,
	}
}

func orderItemToMap(it database.OrderItemView) map[string]any {
	m := productToMap(it.ProductView)
	m["quantity"] = it.Quantity
	m["add_to_cart_order"] = it.AddToCartOrder
	m["reordered"] = it.Reordered
	return m
}

func historyToMap(h database.OrderStatusHistory) map[string]any {
	return map[string]any{
		"history_id": h.HistoryID,
		"order_id":   h.OrderID,
		"status":     h.Status,
		"changed_at": h.ChangedAt,
		"changed_by": h.ChangedBy.String,
		"note":       h.Note.String,
	}
}

func orderToMap(o database.Order) map[string]any {
	return map[string]any{
		"order_id":         o.OrderID,
		"order_number":     o.OrderNumber,
		"delivery_name":    o.DeliveryName.String,
		"delivery_phone":   o.DeliveryPhone.String,
		"delivery_street":  o.DeliveryStreet.String,
		"delivery_city":    o.DeliveryCity.String,
		"delivery_postal":  o.DeliveryPostal.String,
		"delivery_country": o.DeliveryCountry.String,
		"tracking_number":  o.TrackingNumber.String,
		"tracking_carrier": o.TrackingCarrier.String,
		"tracking_url":     o.TrackingURL.String,
		"total_items":      o.TotalItems,
		"total_price":      o.TotalPrice,
		"status":           o.Status,
		"created_at":       o.CreatedAt,
		"updated_at":       o.UpdatedAt,
	}
}

func orderViewToMap(v ordersvc.OrderView) map[string]any {
	m := orderToMap(v.Order)
	items := make([]map[string]any, len(v.Items))
	for i, it := range v.Items {
		items[i] = orderItemToMap(it)
	}
	history := make([]map[string]any, len(v.History))
	for i, h := range v.History {
		history[i] = historyToMap(h)
	}
	m["items"] = items
	m["status_history"] = history
	return m
}

func profileToMap(p identity.Profile) map[string]any {
	return map[string]any{
		"external_id":                       p.ExternalID.String(),
		"first_name":                        p.FirstName,
		"last_name":                         p.LastName,
		"email":                             p.Email,
		"address_street":                    p.AddressStreet,
		"address_city":                      p.AddressCity,
		"address_postal":                    p.AddressPostal,
		"address_country":                   p.AddressCountry,
		"last_notifications_viewed_at":      p.LastNotificationsViewedAt,
		"days_between_order_notifications":  p.DaysBetweenOrderNotifications,
		"order_notifications_start_at":      p.OrderNotificationsStartAt,
		"order_notifications_next_at":       p.OrderNotificationsNextAt,
		"pending_order_notification":        p.PendingOrderNotification,
		"order_notifications_via_email":     p.OrderNotificationsViaEmail,
		"created_at":                        p.CreatedAt,
		"updated_at":                        p.UpdatedAt,
		"has_active_cart":                   p.HasActiveCart,
	}
}

func notificationPageToMap(p identity.NotificationPage) map[string]any {
	notifications := make([]map[string]any, len(p.Notifications))
	for i, n := range p.Notifications {
		notifications[i] = map[string]any{
			"history_id":   n.HistoryID,
			"order_id":     n.OrderID,
			"status":       n.Status,
			"changed_at":   n.ChangedAt,
			"changed_by":   n.ChangedBy.String,
			"note":         n.Note.String,
			"order_number": n.OrderNumber,
		}
	}
	return map[string]any{
		"notifications": notifications,
		"unseen":        p.Unseen,
	}
}

func itemsFromRequest(raw []map[string]any) []cartsvc.Item {
	out := make([]cartsvc.Item, len(raw))
	for i, r := range raw {
		out[i] = cartsvc.Item{
			ProductID: getInt32(r, "product_id"),
			Quantity:  getInt32(r, "quantity"),
		}
	}
	return out
}

func deliveryFromRequest(m map[string]any) ordersvc.DeliveryInfo {
	d, _ := m["delivery"].(map[string]any)
	if d == nil {
		return ordersvc.DeliveryInfo{}
	}
	return ordersvc.DeliveryInfo{
		Name:    getString(d, "name"),
		Phone:   getString(d, "phone"),
		Street:  getString(d, "street"),
		City:    getString(d, "city"),
		Postal:  getString(d, "postal"),
		Country: getString(d, "country"),
	}
}

func orderItemInputsFromRequest(raw []map[string]any) []ordersvc.OrderItemInput {
	out := make([]ordersvc.OrderItemInput, len(raw))
	for i, r := range raw {
		out[i] = ordersvc.OrderItemInput{
			ProductID:      getInt32(r, "product_id"),
			Quantity:       getInt32(r, "quantity"),
			AddToCartOrder: getInt32(r, "add_to_cart_order"),
			Reordered:      getBool(r, "reordered"),
		}
	}
	return out
}
