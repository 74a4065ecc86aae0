package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
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

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestTick_SkipsWhenLockNotAcquired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT pg_try_advisory_lock\(\$1\)`).
		WithArgs(int64(advisoryLockKey)).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	s := New(db, nil, &fakeMailer{}, silentLogger(), "noreply@timel-e.local", time.Minute)
	require.NoError(t, s.Tick(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTick_AdvancesDueUserAndSendsEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	extID := uuid.New()

	mock.ExpectQuery(`SELECT pg_try_advisory_lock\(\$1\)`).
		WithArgs(int64(advisoryLockKey)).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM users WHERE order_notifications_next_at <= \$1`).
		WillReturnRows(sqlmock.NewRows(userCols()).AddRow(
			int64(1), extID, "Ann", "Lee", "ann@example.com", "hash",
			nil, nil, nil, nil,
			nil, start,
			int32(1), start,
			start, false,
			true, nil,
			start, start,
		))
	mock.ExpectExec(`UPDATE users SET`).
		WithArgs(int64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`SELECT pg_advisory_unlock\(\$1\)`).
		WithArgs(int64(advisoryLockKey)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mailer := &fakeMailer{}
	s := New(db, nil, mailer, silentLogger(), "noreply@timel-e.local", time.Minute)
	require.NoError(t, s.Tick(context.Background()))

	assert.Equal(t, []string{"ann@example.com"}, mailer.sent)
	require.NoError(t, mock.ExpectationsWereMet())
}
