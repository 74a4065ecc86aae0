package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRowColumns() []string {
	return []string{
		"order_id", "user_id", "order_number", "delivery_name", "delivery_phone",
		"delivery_street", "delivery_city", "delivery_postal", "delivery_country",
		"tracking_number", "tracking_carrier", "tracking_url", "invoice",
		"total_items", "total_price", "status", "created_at", "updated_at",
	}
}

func TestNextOrderID(t *testing.T) {
	q, mock := newMockQueries(t)
	mock.ExpectQuery(`SELECT nextval\('orders_order_id_seq'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(3422000)))

	id, err := q.NextOrderID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3422000), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder(t *testing.T) {
	q, mock := newMockQueries(t)
	now := time.Now()
	rows := sqlmock.NewRows(orderRowColumns()).AddRow(
		int64(3422000), int64(1), int32(1), nil, nil, nil, nil, nil, nil,
		nil, nil, nil, nil, int32(2), 9.99, "pending", now, now,
	)
	mock.ExpectQuery(`INSERT INTO orders`).WillReturnRows(rows)

	o, err := q.CreateOrder(context.Background(), CreateOrderParams{
		OrderID: 3422000, UserID: 1, OrderNumber: 1,
		TotalItems: 2, TotalPrice: 9.99, Status: "pending", CreatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", o.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockOrderByID(t *testing.T) {
	q, mock := newMockQueries(t)
	now := time.Now()
	rows := sqlmock.NewRows(orderRowColumns()).AddRow(
		int64(3422000), int64(1), int32(1), nil, nil, nil, nil, nil, nil,
		nil, nil, nil, nil, int32(2), 9.99, "processing", now, now,
	)
	mock.ExpectQuery(`SELECT .* FROM orders WHERE order_id = \$1 FOR UPDATE`).
		WithArgs(int64(3422000)).WillReturnRows(rows)

	o, err := q.LockOrderByID(context.Background(), 3422000)
	require.NoError(t, err)
	assert.Equal(t, "processing", o.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetOrderStatus(t *testing.T) {
	q, mock := newMockQueries(t)
	now := time.Now()
	mock.ExpectExec(`UPDATE orders SET status`).
		WithArgs(int64(3422000), "shipped", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := q.SetOrderStatus(context.Background(), 3422000, "shipped", now)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOrderStatusHistory(t *testing.T) {
	q, mock := newMockQueries(t)
	now := time.Now()
	mock.ExpectExec(`INSERT INTO order_status_history`).
		WithArgs(int64(3422000), "shipped", now, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := q.InsertOrderStatusHistory(context.Background(), InsertOrderStatusHistoryParams{
		OrderID: 3422000, Status: "shipped", ChangedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
