package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockCartByUserID(t *testing.T) {
	q, mock := newMockQueries(t)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"cart_id", "user_id", "updated_at"}).AddRow(int32(5), int64(1), now)
	mock.ExpectQuery(`SELECT cart_id, user_id, updated_at FROM carts WHERE user_id = \$1 FOR UPDATE`).
		WithArgs(int64(1)).WillReturnRows(rows)

	c, err := q.LockCartByUserID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(5), c.CartID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertCartItem_AssignsProvidedOrder(t *testing.T) {
	q, mock := newMockQueries(t)
	mock.ExpectExec(`INSERT INTO cart_items`).
		WithArgs(int32(5), int32(42), int32(3), int32(1), false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := q.InsertCartItem(context.Background(), InsertCartItemParams{
		CartID: 5, ProductID: 42, Quantity: 3, AddToCartOrder: 1,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListCartItems_OrdersByAddToCartOrderThenProductID(t *testing.T) {
	q, mock := newMockQueries(t)
	cols := []string{
		"quantity", "add_to_cart_order", "reordered",
		"product_id", "product_name", "aisle_id", "aisle", "department_id", "department",
		"description", "price", "image_url", "popularity", "rating",
	}
	rows := sqlmock.NewRows(cols).
		AddRow(int32(2), int32(1), false, int32(10), "Milk", int32(1), "dairy", int32(1), "dairy eggs", nil, 3.5, nil, int32(0), 0.0).
		AddRow(int32(1), int32(2), true, int32(11), "Bread", int32(2), "bakery", int32(1), "bakery", nil, 2.0, nil, int32(0), 0.0)
	mock.ExpectQuery(`SELECT .* FROM cart_items ci.*ORDER BY ci.add_to_cart_order ASC, ci.product_id ASC`).WithArgs(int32(5)).WillReturnRows(rows)

	items, err := q.ListCartItems(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int32(10), items[0].ProductID)
	assert.True(t, items[1].Reordered)
	require.NoError(t, mock.ExpectationsWereMet())
}
