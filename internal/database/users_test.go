package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockQueries(t *testing.T) (*Queries, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func userRowColumns() []string {
	return []string{
		"internal_id", "external_id", "first_name", "last_name", "email", "password_hash",
		"address_street", "address_city", "address_postal", "address_country",
		"last_login_at", "last_notifications_viewed_at",
		"days_between_order_notifications", "order_notifications_start_at",
		"order_notifications_next_at", "pending_order_notification",
		"order_notifications_via_email", "last_notification_sent_at",
		"created_at", "updated_at",
	}
}

func TestCreateUser(t *testing.T) {
	q, mock := newMockQueries(t)
	now := time.Now()
	extID := uuid.New()

	rows := sqlmock.NewRows(userRowColumns()).AddRow(
		int64(1), extID, "Ada", "Lovelace", "ada@example.com", "hash",
		nil, nil, nil, nil,
		nil, now,
		7, now, now, false,
		false, nil,
		now, now,
	)
	mock.ExpectQuery(`INSERT INTO users`).WillReturnRows(rows)

	u, err := q.CreateUser(context.Background(), CreateUserParams{
		ExternalID:                    extID,
		FirstName:                     "Ada",
		LastName:                      "Lovelace",
		Email:                         "ada@example.com",
		PasswordHash:                  "hash",
		DaysBetweenOrderNotifications: 7,
		OrderNotificationsStartAt:     now,
		OrderNotificationsNextAt:      now,
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, extID, u.ExternalID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	q, mock := newMockQueries(t)
	mock.ExpectQuery(`SELECT .* FROM users WHERE lower\(email\)`).
		WithArgs("nobody@example.com").
		WillReturnError(sqlmock.ErrCancelled)

	_, err := q.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersDueForNotification(t *testing.T) {
	q, mock := newMockQueries(t)
	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns()).
		AddRow(int64(1), uuid.New(), "A", "B", "a@example.com", "h", nil, nil, nil, nil, nil, now, 7, now, now, false, true, nil, now, now).
		AddRow(int64(2), uuid.New(), "C", "D", "c@example.com", "h", nil, nil, nil, nil, nil, now, 7, now, now, false, true, nil, now, now)
	mock.ExpectQuery(`SELECT .* FROM users`).WithArgs(now).WillReturnRows(rows)

	users, err := q.ListUsersDueForNotification(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordNotificationSent(t *testing.T) {
	q, mock := newMockQueries(t)
	now := time.Now()
	mock.ExpectExec(`UPDATE users SET`).
		WithArgs(int64(1), now, now.Add(7*24*time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := q.RecordNotificationSent(context.Background(), 1, now, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
