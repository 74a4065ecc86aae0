package database

import (
	"context"
	"time"
)

// carts.sql.go: cart and cart_item queries. Every mutation runs against a
// *Queries built from a transaction, with the cart row locked FOR UPDATE
// first so concurrent requests for the same user serialize cleanly.

const getCartByUserID = `SELECT cart_id, user_id, updated_at FROM carts WHERE user_id = $1`

func (q *Queries) GetCartByUserID(ctx context.Context, userID int64) (Cart, error) {
	var c Cart
	err := q.db.QueryRowContext(ctx, getCartByUserID, userID).Scan(&c.CartID, &c.UserID, &c.UpdatedAt)
	return c, err
}

const lockCartByUserID = `SELECT cart_id, user_id, updated_at FROM carts WHERE user_id = $1 FOR UPDATE`

// LockCartByUserID must be called inside a transaction before any cart
// mutation, so two concurrent checkouts for the same user cannot interleave.
func (q *Queries) LockCartByUserID(ctx context.Context, userID int64) (Cart, error) {
	var c Cart
	err := q.db.QueryRowContext(ctx, lockCartByUserID, userID).Scan(&c.CartID, &c.UserID, &c.UpdatedAt)
	return c, err
}

const createCart = `INSERT INTO carts (user_id, updated_at) VALUES ($1, $2) RETURNING cart_id, user_id, updated_at`

func (q *Queries) CreateCart(ctx context.Context, userID int64, at time.Time) (Cart, error) {
	var c Cart
	err := q.db.QueryRowContext(ctx, createCart, userID, at).Scan(&c.CartID, &c.UserID, &c.UpdatedAt)
	return c, err
}

const touchCart = `UPDATE carts SET updated_at = $2 WHERE cart_id = $1`

func (q *Queries) TouchCart(ctx context.Context, cartID int32, at time.Time) error {
	_, err := q.db.ExecContext(ctx, touchCart, cartID, at)
	return err
}

const deleteCart = `DELETE FROM carts WHERE cart_id = $1`

func (q *Queries) DeleteCart(ctx context.Context, cartID int32) error {
	_, err := q.db.ExecContext(ctx, deleteCart, cartID)
	return err
}

const cartItemViewColumns = `
    ci.quantity, ci.add_to_cart_order, ci.reordered,
` + productViewColumns

const cartItemViewJoin = `
FROM cart_items ci
JOIN products p ON p.product_id = ci.product_id
JOIN aisles a ON a.aisle_id = p.aisle_id
JOIN departments d ON d.department_id = p.department_id
LEFT JOIN product_enriched pe ON pe.product_id = p.product_id
`

const listCartItems = `SELECT ` + cartItemViewColumns + cartItemViewJoin + `WHERE ci.cart_id = $1 ORDER BY ci.add_to_cart_order ASC, ci.product_id ASC`

func (q *Queries) ListCartItems(ctx context.Context, cartID int32) ([]CartItemView, error) {
	rows, err := q.db.QueryContext(ctx, listCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CartItemView
	for rows.Next() {
		var v CartItemView
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

const getCartItem = `SELECT cart_id, product_id, quantity, add_to_cart_order, reordered FROM cart_items WHERE cart_id = $1 AND product_id = $2`

func (q *Queries) GetCartItem(ctx context.Context, cartID, productID int32) (CartItem, error) {
	var ci CartItem
	err := q.db.QueryRowContext(ctx, getCartItem, cartID, productID).
		Scan(&ci.CartID, &ci.ProductID, &ci.Quantity, &ci.AddToCartOrder, &ci.Reordered)
	return ci, err
}

const nextCartItemOrder = `SELECT COALESCE(max(add_to_cart_order), 0) + 1 FROM cart_items WHERE cart_id = $1`

func (q *Queries) NextCartItemOrder(ctx context.Context, cartID int32) (int32, error) {
	var n int32
	err := q.db.QueryRowContext(ctx, nextCartItemOrder, cartID).Scan(&n)
	return n, err
}

const insertCartItem = `
INSERT INTO cart_items (cart_id, product_id, quantity, add_to_cart_order, reordered)
VALUES ($1, $2, $3, $4, $5)
`

type InsertCartItemParams struct {
	CartID         int32
	ProductID      int32
	Quantity       int32
	AddToCartOrder int32
	Reordered      bool
}

func (q *Queries) InsertCartItem(ctx context.Context, arg InsertCartItemParams) error {
	_, err := q.db.ExecContext(ctx, insertCartItem,
		arg.CartID, arg.ProductID, arg.Quantity, arg.AddToCartOrder, arg.Reordered)
	return err
}

const setCartItemQuantity = `UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND product_id = $2`

func (q *Queries) SetCartItemQuantity(ctx context.Context, cartID, productID, quantity int32) error {
	_, err := q.db.ExecContext(ctx, setCartItemQuantity, cartID, productID, quantity)
	return err
}

const removeCartItem = `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

func (q *Queries) RemoveCartItem(ctx context.Context, cartID, productID int32) error {
	_, err := q.db.ExecContext(ctx, removeCartItem, cartID, productID)
	return err
}

const clearCartItems = `DELETE FROM cart_items WHERE cart_id = $1`

func (q *Queries) ClearCartItems(ctx context.Context, cartID int32) error {
	_, err := q.db.ExecContext(ctx, clearCartItems, cartID)
	return err
}
