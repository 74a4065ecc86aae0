// Package ordersvc implements order creation, the status state machine, and
// paginated reads. It is the only code path that mutates Order.status and
// writes OrderStatusHistory rows.
package ordersvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/timel-e/core/internal/apperr"
	"github.com/timel-e/core/internal/database"
)

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// transitions is the only table of legal Order.status moves. Terminal
// states have no outgoing edges.
var transitions = map[string][]string{
	"pending":    {"processing", "cancelled"},
	"processing": {"shipped", "cancelled"},
	"shipped":    {"delivered", "returned"},
	"delivered":  {"returned"},
	"cancelled":  {},
	"returned":   {},
}

func canTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type DeliveryInfo struct {
	Name    string
	Phone   string
	Street  string
	City    string
	Postal  string
	Country string
}

func (d DeliveryInfo) toNullable() (name, phone, street, city, postal, country sql.NullString) {
	return nullable(d.Name), nullable(d.Phone), nullable(d.Street), nullable(d.City), nullable(d.Postal), nullable(d.Country)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// OrderView is the full order detail: the order row, enriched items in
// add_to_cart_order then product_id order, and the complete status history.
type OrderView struct {
	Order   database.Order
	Items   []database.OrderItemView
	History []database.OrderStatusHistory
}

// Checkout is the canonical order-creation path: reads the current cart,
// fails EmptyCart if none, assigns id/number, snapshots items, and clears
// the cart, all inside one transaction.
func (s *Service) Checkout(ctx context.Context, userID int64, delivery DeliveryInfo) (OrderView, error) {
	var result OrderView
	err := s.withTx(ctx, func(q *database.Queries) error {
		cart, err := q.LockCartByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.New(apperr.EmptyCart, "cart is empty")
			}
			return apperr.Wrap(apperr.Internal, "locking cart failed", err)
		}
		items, err := q.ListCartItems(ctx, cart.CartID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "listing cart items failed", err)
		}
		if len(items) == 0 {
			return apperr.New(apperr.EmptyCart, "cart is empty")
		}

		order, err := s.createOrderFromItems(ctx, q, userID, delivery, cartItemsToOrderInputs(items))
		if err != nil {
			return err
		}

		if err := q.ClearCartItems(ctx, cart.CartID); err != nil {
			return apperr.Wrap(apperr.Internal, "clearing cart failed", err)
		}

		view, err := s.readOrder(ctx, q, order.OrderID)
		if err != nil {
			return err
		}
		result = view
		return nil
	})
	return result, err
}

type OrderItemInput struct {
	ProductID      int32
	Quantity       int32
	AddToCartOrder int32
	Reordered      bool
}

func cartItemsToOrderInputs(items []database.CartItemView) []OrderItemInput {
	out := make([]OrderItemInput, len(items))
	for i, it := range items {
		out[i] = OrderItemInput{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			AddToCartOrder: it.AddToCartOrder,
			Reordered:      it.Reordered,
		}
	}
	return out
}

// CreateDirect creates an order from request-supplied items, bypassing the cart.
func (s *Service) CreateDirect(ctx context.Context, userID int64, delivery DeliveryInfo, items []OrderItemInput) (OrderView, error) {
	if len(items) == 0 {
		return OrderView{}, apperr.New(apperr.InvalidInput, "order must contain at least one item")
	}
	var result OrderView
	err := s.withTx(ctx, func(q *database.Queries) error {
		order, err := s.createOrderFromItems(ctx, q, userID, delivery, items)
		if err != nil {
			return err
		}
		view, err := s.readOrder(ctx, q, order.OrderID)
		if err != nil {
			return err
		}
		result = view
		return nil
	})
	return result, err
}

func (s *Service) createOrderFromItems(ctx context.Context, q *database.Queries, userID int64, delivery DeliveryInfo, items []OrderItemInput) (database.Order, error) {
	ids := make([]int32, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return database.Order{}, apperr.New(apperr.InvalidInput, "item quantity must be positive")
		}
		ids[i] = it.ProductID
	}
	products, err := q.ListProductsByIDs(ctx, ids)
	if err != nil {
		return database.Order{}, apperr.Wrap(apperr.Internal, "validating products failed", err)
	}
	priceByID := make(map[int32]float64, len(products))
	for _, p := range products {
		priceByID[p.ProductID] = p.Price
	}
	for _, it := range items {
		if _, ok := priceByID[it.ProductID]; !ok {
			return database.Order{}, apperr.New(apperr.InvalidInput, "unknown product id")
		}
	}

	orderID, err := q.NextOrderID(ctx)
	if err != nil {
		return database.Order{}, apperr.Wrap(apperr.Internal, "assigning order id failed", err)
	}
	orderNumber, err := q.NextOrderNumberForUser(ctx, userID)
	if err != nil {
		return database.Order{}, apperr.Wrap(apperr.Internal, "assigning order number failed", err)
	}

	var totalItems int32
	var totalPrice float64
	for _, it := range items {
		totalItems += it.Quantity
		totalPrice += float64(it.Quantity) * priceByID[it.ProductID]
	}

	name, phone, street, city, postal, country := delivery.toNullable()
	now := time.Now().UTC()
	order, err := q.CreateOrder(ctx, database.CreateOrderParams{
		OrderID: orderID, UserID: userID, OrderNumber: orderNumber,
		DeliveryName: name, DeliveryPhone: phone, DeliveryStreet: street,
		DeliveryCity: city, DeliveryPostal: postal, DeliveryCountry: country,
		TotalItems: totalItems, TotalPrice: totalPrice, Status: "pending", CreatedAt: now,
	})
	if err != nil {
		return database.Order{}, apperr.Wrap(apperr.Internal, "creating order failed", err)
	}

	for _, it := range items {
		if err := q.InsertOrderItem(ctx, database.InsertOrderItemParams{
			OrderID: orderID, ProductID: it.ProductID, Quantity: it.Quantity,
			AddToCartOrder: it.AddToCartOrder, Reordered: it.Reordered,
		}); err != nil {
			return database.Order{}, apperr.Wrap(apperr.Internal, "inserting order item failed", err)
		}
	}

	note := nullable("Order created")
	if err := q.InsertOrderStatusHistory(ctx, database.InsertOrderStatusHistoryParams{
		OrderID: orderID, Status: "pending", ChangedAt: now, Note: note,
	}); err != nil {
		return database.Order{}, apperr.Wrap(apperr.Internal, "inserting order status history failed", err)
	}
	return order, nil
}

// Transition moves order to the next status, writing one history row.
// changedBy identifies the actor ("system", "user:<uuid>", or a role string).
func (s *Service) Transition(ctx context.Context, orderID int64, to, changedBy, note string) (OrderView, error) {
	var result OrderView
	err := s.withTx(ctx, func(q *database.Queries) error {
		order, err := q.LockOrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.New(apperr.NotFound, "order not found")
			}
			return apperr.Wrap(apperr.Internal, "locking order failed", err)
		}
		if !canTransition(order.Status, to) {
			return apperr.New(apperr.IllegalTransition, fmt.Sprintf("cannot transition from %s to %s", order.Status, to))
		}

		now := time.Now().UTC()
		if err := q.SetOrderStatus(ctx, orderID, to, now); err != nil {
			return apperr.Wrap(apperr.Internal, "updating order status failed", err)
		}
		if err := q.InsertOrderStatusHistory(ctx, database.InsertOrderStatusHistoryParams{
			OrderID: orderID, Status: to, ChangedAt: now,
			ChangedBy: nullable(changedBy), Note: nullable(note),
		}); err != nil {
			return apperr.Wrap(apperr.Internal, "inserting order status history failed", err)
		}

		view, err := s.readOrder(ctx, q, orderID)
		if err != nil {
			return err
		}
		result = view
		return nil
	})
	return result, err
}

func (s *Service) Get(ctx context.Context, orderID int64) (OrderView, error) {
	q := database.New(s.db)
	return s.readOrder(ctx, q, orderID)
}

func (s *Service) readOrder(ctx context.Context, q *database.Queries, orderID int64) (OrderView, error) {
	order, err := q.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderView{}, apperr.New(apperr.NotFound, "order not found")
		}
		return OrderView{}, apperr.Wrap(apperr.Internal, "looking up order failed", err)
	}
	items, err := q.ListOrderItems(ctx, orderID)
	if err != nil {
		return OrderView{}, apperr.Wrap(apperr.Internal, "listing order items failed", err)
	}
	history, err := q.ListOrderStatusHistory(ctx, orderID)
	if err != nil {
		return OrderView{}, apperr.Wrap(apperr.Internal, "listing order status history failed", err)
	}
	return OrderView{Order: order, Items: items, History: history}, nil
}

type OrderPage struct {
	Orders []OrderView
	Total  int64
}

// ListByUser paginates at the order level; each entry includes enriched items.
func (s *Service) ListByUser(ctx context.Context, userID int64, limit, offset int32) (OrderPage, error) {
	q := database.New(s.db)
	orders, err := q.ListOrdersByUser(ctx, userID, limit, offset)
	if err != nil {
		return OrderPage{}, apperr.Wrap(apperr.Internal, "listing orders failed", err)
	}
	total, err := q.CountOrdersByUser(ctx, userID)
	if err != nil {
		return OrderPage{}, apperr.Wrap(apperr.Internal, "counting orders failed", err)
	}

	views := make([]OrderView, len(orders))
	for i, o := range orders {
		items, err := q.ListOrderItems(ctx, o.OrderID)
		if err != nil {
			return OrderPage{}, apperr.Wrap(apperr.Internal, "listing order items failed", err)
		}
		history, err := q.ListOrderStatusHistory(ctx, o.OrderID)
		if err != nil {
			return OrderPage{}, apperr.Wrap(apperr.Internal, "listing order status history failed", err)
		}
		views[i] = OrderView{Order: o, Items: items, History: history}
	}
	return OrderPage{Orders: views, Total: total}, nil
}

func (s *Service) withTx(ctx context.Context, fn func(q *database.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "beginning transaction failed", err)
	}
	defer tx.Rollback()

	if err := fn(database.New(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Internal, "committing transaction failed", err)
	}
	return nil
}
