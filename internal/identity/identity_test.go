package identity

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timel-e/core/auth"
	"github.com/timel-e/core/internal/apperr"
	"github.com/timel-e/core/internal/database"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(database.New(db), uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")), mock
}

func userCols() []string {
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

func TestLegacyExternalID_Deterministic(t *testing.T) {
	ns := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	a := LegacyExternalID(ns, 42)
	b := LegacyExternalID(ns, 42)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, LegacyExternalID(ns, 43))
}

func TestNextNotificationAt_FutureStartUnchanged(t *testing.T) {
	now := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	got := NextNotificationAt(start, 7, now)
	assert.Equal(t, start, got)
}

func TestNextNotificationAt_CatchUpCoalesces(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	got := NextNotificationAt(start, 1, now)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), got)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.Register(context.Background(), RegisterParams{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "p@ss1234",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.CodeOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_Success(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	now := time.Now().UTC()
	extID := uuid.New()
	rows := sqlmock.NewRows(userCols()).AddRow(
		int64(1), extID, "Ada", "Lovelace", "ada@example.com", "hash",
		nil, nil, nil, nil, nil, now, int32(7), now, now, false, false, nil, now, now,
	)
	mock.ExpectQuery(`INSERT INTO users`).WillReturnRows(rows)

	p, err := svc.Register(context.Background(), RegisterParams{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "p@ss1234",
	})
	require.NoError(t, err)
	assert.Equal(t, extID, p.ExternalID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mock := newTestService(t)
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(userCols()).AddRow(
		int64(1), uuid.New(), "Ada", "Lovelace", "ada@example.com", hash,
		nil, nil, nil, nil, nil, now, int32(7), now, now, false, false, nil, now, now,
	)
	mock.ExpectQuery(`SELECT .* FROM users WHERE lower\(email\)`).WithArgs("ada@example.com").WillReturnRows(rows)

	_, err = svc.Login(context.Background(), "ada@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apperr.AuthFailed, apperr.CodeOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_Success_NoCart(t *testing.T) {
	svc, mock := newTestService(t)
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(userCols()).AddRow(
		int64(1), uuid.New(), "Ada", "Lovelace", "ada@example.com", hash,
		nil, nil, nil, nil, nil, now, int32(7), now, now, false, false, nil, now, now,
	)
	mock.ExpectQuery(`SELECT .* FROM users WHERE lower\(email\)`).WithArgs("ada@example.com").WillReturnRows(rows)
	mock.ExpectExec(`UPDATE users SET last_login_at`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT cart_id, user_id, updated_at FROM carts WHERE user_id = \$1$`).
		WithArgs(int64(1)).WillReturnError(sql.ErrNoRows)

	p, err := svc.Login(context.Background(), "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.False(t, p.HasActiveCart)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile_EmptyPatchRejected(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.UpdateProfile(context.Background(), uuid.New(), ProfilePatch{})
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidInput, apperr.CodeOf(err))
}

func TestChangePassword_RequiresCurrentPassword(t *testing.T) {
	svc, mock := newTestService(t)
	extID := uuid.New()
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM users WHERE external_id`).WithArgs(extID).
		WillReturnRows(sqlmock.NewRows(userCols()).AddRow(
			int64(1), extID, "Ada", "Lovelace", "ada@example.com", hash,
			nil, nil, nil, nil, nil, now, int32(7), now, now, false, false, nil, now, now,
		))
	mock.ExpectQuery(`SELECT .* FROM users WHERE internal_id`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(userCols()).AddRow(
			int64(1), extID, "Ada", "Lovelace", "ada@example.com", hash,
			nil, nil, nil, nil, nil, now, int32(7), now, now, false, false, nil, now, now,
		))

	err = svc.ChangePassword(context.Background(), extID, "wrong", "new-password1")
	require.Error(t, err)
	assert.Equal(t, apperr.AuthFailed, apperr.CodeOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser_RejectsWhenOrdersExist(t *testing.T) {
	svc, mock := newTestService(t)
	extID := uuid.New()
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM users WHERE external_id`).WithArgs(extID).
		WillReturnRows(sqlmock.NewRows(userCols()).AddRow(
			int64(1), extID, "Ada", "Lovelace", "ada@example.com", hash,
			nil, nil, nil, nil, nil, now, int32(7), now, now, false, false, nil, now, now,
		))
	mock.ExpectQuery(`SELECT .* FROM users WHERE internal_id`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(userCols()).AddRow(
			int64(1), extID, "Ada", "Lovelace", "ada@example.com", hash,
			nil, nil, nil, nil, nil, now, int32(7), now, now, false, false, nil, now, now,
		))
	mock.ExpectQuery(`SELECT count\(\*\) FROM orders WHERE user_id = \$1`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	err = svc.DeleteUser(context.Background(), extID, "correct-horse")
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.CodeOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListNotifications_ResolvesInternalIDAndCounts(t *testing.T) {
	svc, mock := newTestService(t)
	extID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM users WHERE external_id`).WithArgs(extID).
		WillReturnRows(sqlmock.NewRows(userCols()).AddRow(
			int64(1), extID, "Ada", "Lovelace", "ada@example.com", "hash",
			nil, nil, nil, nil, nil, now, int32(7), now, now, false, false, nil, now, now,
		))
	mock.ExpectQuery(`SELECT h.history_id`).WithArgs(int64(1), int32(20), int32(0)).
		WillReturnRows(sqlmock.NewRows([]string{
			"history_id", "order_id", "status", "changed_at", "changed_by", "note", "order_number",
		}).AddRow(int64(1), int64(5), "shipped", now, nil, nil, int32(1)))
	mock.ExpectQuery(`SELECT count\(\*\)`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	page, err := svc.ListNotifications(context.Background(), extID, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Unseen)
	require.Len(t, page.Notifications, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
