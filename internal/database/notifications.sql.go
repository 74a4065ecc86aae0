package database

import (
	"context"
	"database/sql"
	"time"
)

// notifications.sql.go: the in-app order-status notification feed, derived
// from order_status_history rather than stored redundantly. A status change
// is "unseen" once changed_at is after the user's last_notifications_viewed_at.

const listOrderStatusNotifications = `
SELECT h.history_id, h.order_id, h.status, h.changed_at, h.changed_by, h.note,
    o.order_number
FROM order_status_history h
JOIN orders o ON o.order_id = h.order_id
JOIN users u ON u.internal_id = o.user_id
WHERE o.user_id = $1 AND h.changed_at > u.last_notifications_viewed_at
ORDER BY h.changed_at DESC
LIMIT $2 OFFSET $3
`

type OrderStatusNotification struct {
	HistoryID   int64
	OrderID     int64
	Status      string
	ChangedAt   time.Time
	ChangedBy   sql.NullString
	Note        sql.NullString
	OrderNumber int32
}

func (q *Queries) ListOrderStatusNotifications(ctx context.Context, userID int64, limit, offset int32) ([]OrderStatusNotification, error) {
	rows, err := q.db.QueryContext(ctx, listOrderStatusNotifications, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderStatusNotification
	for rows.Next() {
		var n OrderStatusNotification
		if err := rows.Scan(&n.HistoryID, &n.OrderID, &n.Status, &n.ChangedAt, &n.ChangedBy, &n.Note, &n.OrderNumber); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

const countUnseenOrderStatusNotifications = `
SELECT count(*)
FROM order_status_history h
JOIN orders o ON o.order_id = h.order_id
JOIN users u ON u.internal_id = o.user_id
WHERE o.user_id = $1 AND h.changed_at > u.last_notifications_viewed_at
`

func (q *Queries) CountUnseenOrderStatusNotifications(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUnseenOrderStatusNotifications, userID).Scan(&n)
	return n, err
}
