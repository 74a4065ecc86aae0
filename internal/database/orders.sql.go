package database

import (
	"context"
	"database/sql"
	"time"
)

// orders.sql.go: order lifecycle queries — creation from checkout, item
// snapshots, status transitions, and the append-only status history.

const orderColumns = `
    order_id, user_id, order_number, delivery_name, delivery_phone,
    delivery_street, delivery_city, delivery_postal, delivery_country,
    tracking_number, tracking_carrier, tracking_url, invoice,
    total_items, total_price, status, created_at, updated_at
`

const nextOrderID = `SELECT nextval('orders_order_id_seq')`

func (q *Queries) NextOrderID(ctx context.Context) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, nextOrderID).Scan(&id)
	return id, err
}

const nextOrderNumberForUser = `SELECT COALESCE(max(order_number), 0) + 1 FROM orders WHERE user_id = $1`

func (q *Queries) NextOrderNumberForUser(ctx context.Context, userID int64) (int32, error) {
	var n int32
	err := q.db.QueryRowContext(ctx, nextOrderNumberForUser, userID).Scan(&n)
	return n, err
}

const createOrder = `
INSERT INTO orders (
    order_id, user_id, order_number, delivery_name, delivery_phone,
    delivery_street, delivery_city, delivery_postal, delivery_country,
    total_items, total_price, status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OrderID         int64
	UserID          int64
	OrderNumber     int32
	DeliveryName    sql.NullString
	DeliveryPhone   sql.NullString
	DeliveryStreet  sql.NullString
	DeliveryCity    sql.NullString
	DeliveryPostal  sql.NullString
	DeliveryCountry sql.NullString
	TotalItems      int32
	TotalPrice      float64
	Status          string
	CreatedAt       time.Time
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRowContext(ctx, createOrder,
		arg.OrderID, arg.UserID, arg.OrderNumber, arg.DeliveryName, arg.DeliveryPhone,
		arg.DeliveryStreet, arg.DeliveryCity, arg.DeliveryPostal, arg.DeliveryCountry,
		arg.TotalItems, arg.TotalPrice, arg.Status, arg.CreatedAt,
	)
	return scanOrder(row)
}

const insertOrderItem = `
INSERT INTO order_items (order_id, product_id, quantity, add_to_cart_order, reordered)
VALUES ($1, $2, $3, $4, $5)
`

type InsertOrderItemParams struct {
	OrderID        int64
	ProductID      int32
	Quantity       int32
	AddToCartOrder int32
	Reordered      bool
}

func (q *Queries) InsertOrderItem(ctx context.Context, arg InsertOrderItemParams) error {
	_, err := q.db.ExecContext(ctx, insertOrderItem,
		arg.OrderID, arg.ProductID, arg.Quantity, arg.AddToCartOrder, arg.Reordered)
	return err
}

const insertOrderStatusHistory = `
INSERT INTO order_status_history (order_id, status, changed_at, changed_by, note)
VALUES ($1, $2, $3, $4, $5)
`

type InsertOrderStatusHistoryParams struct {
	OrderID   int64
	Status    string
	ChangedAt time.Time
	ChangedBy sql.NullString
	Note      sql.NullString
}

func (q *Queries) InsertOrderStatusHistory(ctx context.Context, arg InsertOrderStatusHistoryParams) error {
	_, err := q.db.ExecContext(ctx, insertOrderStatusHistory,
		arg.OrderID, arg.Status, arg.ChangedAt, arg.ChangedBy, arg.Note)
	return err
}

const getOrderByID = `SELECT ` + orderColumns + `FROM orders WHERE order_id = $1`

func (q *Queries) GetOrderByID(ctx context.Context, orderID int64) (Order, error) {
	row := q.db.QueryRowContext(ctx, getOrderByID, orderID)
	return scanOrder(row)
}

const lockOrderByID = `SELECT ` + orderColumns + `FROM orders WHERE order_id = $1 FOR UPDATE`

// LockOrderByID must be called inside a transaction before any status
// transition, so the state machine check-then-write is race-free.
func (q *Queries) LockOrderByID(ctx context.Context, orderID int64) (Order, error) {
	row := q.db.QueryRowContext(ctx, lockOrderByID, orderID)
	return scanOrder(row)
}

const getOrderByUserAndNumber = `SELECT ` + orderColumns + `FROM orders WHERE user_id = $1 AND order_number = $2`

func (q *Queries) GetOrderByUserAndNumber(ctx context.Context, userID int64, orderNumber int32) (Order, error) {
	row := q.db.QueryRowContext(ctx, getOrderByUserAndNumber, userID, orderNumber)
	return scanOrder(row)
}

const listOrdersByUser = `
SELECT ` + orderColumns + `FROM orders WHERE user_id = $1
ORDER BY created_at DESC LIMIT $2 OFFSET $3
`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID int64, limit, offset int32) ([]Order, error) {
	rows, err := q.db.QueryContext(ctx, listOrdersByUser, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

const countOrdersByUser = `SELECT count(*) FROM orders WHERE user_id = $1`

func (q *Queries) CountOrdersByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countOrdersByUser, userID).Scan(&n)
	return n, err
}

const listOrderItems = `SELECT ` + cartItemViewColumns + `
FROM order_items ci
JOIN products p ON p.product_id = ci.product_id
JOIN aisles a ON a.aisle_id = p.aisle_id
JOIN departments d ON d.department_id = p.department_id
LEFT JOIN product_enriched pe ON pe.product_id = p.product_id
WHERE ci.order_id = $1 ORDER BY ci.add_to_cart_order ASC, ci.product_id ASC
`

func (q *Queries) ListOrderItems(ctx context.Context, orderID int64) ([]OrderItemView, error) {
	rows, err := q.db.QueryContext(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItemView
	for rows.Next() {
		var v OrderItemView
		if err := rows.Scan(
			&v.Quantity, &v.AddToCartOrder, &v.Reordered,
			&v.ProductID, &v.ProductName, &v.AisleID, &v.Aisle, &v.DepartmentID, &v.Department,
			&v.Description, &v.Price, &v.ImageURL, &v.Popularity, &v.Rating,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const listOrderStatusHistory = `
SELECT history_id, order_id, status, changed_at, changed_by, note
FROM order_status_history WHERE order_id = $1 ORDER BY changed_at ASC, history_id ASC
`

func (q *Queries) ListOrderStatusHistory(ctx context.Context, orderID int64) ([]OrderStatusHistory, error) {
	rows, err := q.db.QueryContext(ctx, listOrderStatusHistory, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderStatusHistory
	for rows.Next() {
		var h OrderStatusHistory
		if err := rows.Scan(&h.HistoryID, &h.OrderID, &h.Status, &h.ChangedAt, &h.ChangedBy, &h.Note); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

const setOrderStatus = `UPDATE orders SET status = $2, updated_at = $3 WHERE order_id = $1`

func (q *Queries) SetOrderStatus(ctx context.Context, orderID int64, status string, at time.Time) error {
	_, err := q.db.ExecContext(ctx, setOrderStatus, orderID, status, at)
	return err
}

const setOrderTracking = `
UPDATE orders SET tracking_number = $2, tracking_carrier = $3, tracking_url = $4, updated_at = $5
WHERE order_id = $1
`

type SetOrderTrackingParams struct {
	OrderID         int64
	TrackingNumber  sql.NullString
	TrackingCarrier sql.NullString
	TrackingURL     sql.NullString
	UpdatedAt       time.Time
}

func (q *Queries) SetOrderTracking(ctx context.Context, arg SetOrderTrackingParams) error {
	_, err := q.db.ExecContext(ctx, setOrderTracking,
		arg.OrderID, arg.TrackingNumber, arg.TrackingCarrier, arg.TrackingURL, arg.UpdatedAt)
	return err
}

const setOrderInvoice = `UPDATE orders SET invoice = $2, updated_at = $3 WHERE order_id = $1`

func (q *Queries) SetOrderInvoice(ctx context.Context, orderID int64, invoice []byte, at time.Time) error {
	_, err := q.db.ExecContext(ctx, setOrderInvoice, orderID, invoice, at)
	return err
}

func scanOrder(row rowScanner) (Order, error) {
	return scanOrderRow(row)
}

func scanOrderRow(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(
		&o.OrderID, &o.UserID, &o.OrderNumber, &o.DeliveryName, &o.DeliveryPhone,
		&o.DeliveryStreet, &o.DeliveryCity, &o.DeliveryPostal, &o.DeliveryCountry,
		&o.TrackingNumber, &o.TrackingCarrier, &o.TrackingURL, &o.Invoice,
		&o.TotalItems, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}
