package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// users.sql.go: identity table queries — registration, login, profile
// mutation, and the notification-preference fields the scheduler reads.

const createUser = `
INSERT INTO users (
    external_id, first_name, last_name, email, password_hash,
    days_between_order_notifications, order_notifications_start_at,
    order_notifications_next_at, order_notifications_via_email
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING internal_id, external_id, first_name, last_name, email, password_hash,
    address_street, address_city, address_postal, address_country,
    last_login_at, last_notifications_viewed_at,
    days_between_order_notifications, order_notifications_start_at,
    order_notifications_next_at, pending_order_notification,
    order_notifications_via_email, last_notification_sent_at,
    created_at, updated_at
`

type CreateUserParams struct {
	ExternalID                    uuid.UUID
	FirstName                     string
	LastName                      string
	Email                         string
	PasswordHash                  string
	DaysBetweenOrderNotifications int32
	OrderNotificationsStartAt     time.Time
	OrderNotificationsNextAt      time.Time
	OrderNotificationsViaEmail    bool
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.ExternalID, arg.FirstName, arg.LastName, arg.Email, arg.PasswordHash,
		arg.DaysBetweenOrderNotifications, arg.OrderNotificationsStartAt,
		arg.OrderNotificationsNextAt, arg.OrderNotificationsViaEmail,
	)
	return scanUser(row)
}

const checkUserExistsByEmail = `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`

func (q *Queries) CheckUserExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, checkUserExistsByEmail, email).Scan(&exists)
	return exists, err
}

const getUserByEmail = `
SELECT internal_id, external_id, first_name, last_name, email, password_hash,
    address_street, address_city, address_postal, address_country,
    last_login_at, last_notifications_viewed_at,
    days_between_order_notifications, order_notifications_start_at,
    order_notifications_next_at, pending_order_notification,
    order_notifications_via_email, last_notification_sent_at,
    created_at, updated_at
FROM users WHERE lower(email) = lower($1)
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	return scanUser(row)
}

const getUserByExternalID = `
SELECT internal_id, external_id, first_name, last_name, email, password_hash,
    address_street, address_city, address_postal, address_country,
    last_login_at, last_notifications_viewed_at,
    days_between_order_notifications, order_notifications_start_at,
    order_notifications_next_at, pending_order_notification,
    order_notifications_via_email, last_notification_sent_at,
    created_at, updated_at
FROM users WHERE external_id = $1
`

func (q *Queries) GetUserByExternalID(ctx context.Context, externalID uuid.UUID) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByExternalID, externalID)
	return scanUser(row)
}

const getUserByInternalID = `
SELECT internal_id, external_id, first_name, last_name, email, password_hash,
    address_street, address_city, address_postal, address_country,
    last_login_at, last_notifications_viewed_at,
    days_between_order_notifications, order_notifications_start_at,
    order_notifications_next_at, pending_order_notification,
    order_notifications_via_email, last_notification_sent_at,
    created_at, updated_at
FROM users WHERE internal_id = $1
`

func (q *Queries) GetUserByInternalID(ctx context.Context, internalID int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByInternalID, internalID)
	return scanUser(row)
}

const updateLastLogin = `UPDATE users SET last_login_at = $2, updated_at = $2 WHERE internal_id = $1`

func (q *Queries) UpdateLastLogin(ctx context.Context, internalID int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, updateLastLogin, internalID, at)
	return err
}

const updateUserProfile = `
UPDATE users SET
    first_name = COALESCE($2, first_name),
    last_name = COALESCE($3, last_name),
    address_street = COALESCE($4, address_street),
    address_city = COALESCE($5, address_city),
    address_postal = COALESCE($6, address_postal),
    address_country = COALESCE($7, address_country),
    updated_at = $8
WHERE internal_id = $1
`

type UpdateUserProfileParams struct {
	InternalID     int64
	FirstName      sql.NullString
	LastName       sql.NullString
	AddressStreet  sql.NullString
	AddressCity    sql.NullString
	AddressPostal  sql.NullString
	AddressCountry sql.NullString
	UpdatedAt      time.Time
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) error {
	_, err := q.db.ExecContext(ctx, updateUserProfile,
		arg.InternalID, arg.FirstName, arg.LastName,
		arg.AddressStreet, arg.AddressCity, arg.AddressPostal, arg.AddressCountry,
		arg.UpdatedAt,
	)
	return err
}

const updateNotificationPreferences = `
UPDATE users SET
    days_between_order_notifications = $2,
    order_notifications_start_at = $3,
    order_notifications_next_at = $4,
    order_notifications_via_email = $5,
    updated_at = $6
WHERE internal_id = $1
`

type UpdateNotificationPreferencesParams struct {
	InternalID                     int64
	DaysBetweenOrderNotifications  int32
	OrderNotificationsStartAt      time.Time
	OrderNotificationsNextAt       time.Time
	OrderNotificationsViaEmail     bool
	UpdatedAt                      time.Time
}

func (q *Queries) UpdateNotificationPreferences(ctx context.Context, arg UpdateNotificationPreferencesParams) error {
	_, err := q.db.ExecContext(ctx, updateNotificationPreferences,
		arg.InternalID, arg.DaysBetweenOrderNotifications,
		arg.OrderNotificationsStartAt, arg.OrderNotificationsNextAt,
		arg.OrderNotificationsViaEmail, arg.UpdatedAt,
	)
	return err
}

const updatePassword = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE internal_id = $1`

func (q *Queries) UpdatePassword(ctx context.Context, internalID int64, passwordHash string, at time.Time) error {
	_, err := q.db.ExecContext(ctx, updatePassword, internalID, passwordHash, at)
	return err
}

const updateEmail = `UPDATE users SET email = $2, updated_at = $3 WHERE internal_id = $1`

func (q *Queries) UpdateEmail(ctx context.Context, internalID int64, email string, at time.Time) error {
	_, err := q.db.ExecContext(ctx, updateEmail, internalID, email, at)
	return err
}

const markNotificationsViewed = `UPDATE users SET last_notifications_viewed_at = $2 WHERE internal_id = $1`

func (q *Queries) MarkNotificationsViewed(ctx context.Context, internalID int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, markNotificationsViewed, internalID, at)
	return err
}

const deleteUser = `DELETE FROM users WHERE internal_id = $1`

func (q *Queries) DeleteUser(ctx context.Context, internalID int64) error {
	_, err := q.db.ExecContext(ctx, deleteUser, internalID)
	return err
}

// ListUsersDueForNotification selects every user whose reminder is due, for the
// scheduler's per-tick sweep. Locked FOR UPDATE SKIP LOCKED so concurrent ticks
// (should they ever overlap) never double-process the same user.
const listUsersDueForNotification = `
SELECT internal_id, external_id, first_name, last_name, email, password_hash,
    address_street, address_city, address_postal, address_country,
    last_login_at, last_notifications_viewed_at,
    days_between_order_notifications, order_notifications_start_at,
    order_notifications_next_at, pending_order_notification,
    order_notifications_via_email, last_notification_sent_at,
    created_at, updated_at
FROM users
WHERE order_notifications_next_at <= $1
FOR UPDATE SKIP LOCKED
`

func (q *Queries) ListUsersDueForNotification(ctx context.Context, now time.Time) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsersDueForNotification, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const recordNotificationSent = `
UPDATE users SET
    pending_order_notification = true,
    last_notification_sent_at = $2,
    order_notifications_next_at = $3
WHERE internal_id = $1
`

func (q *Queries) RecordNotificationSent(ctx context.Context, internalID int64, sentAt, nextAt time.Time) error {
	_, err := q.db.ExecContext(ctx, recordNotificationSent, internalID, sentAt, nextAt)
	return err
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	return scanUserRow(row)
}

func scanUserRow(row rowScanner) (User, error) {
	var u User
	err := row.Scan(
		&u.InternalID, &u.ExternalID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.AddressStreet, &u.AddressCity, &u.AddressPostal, &u.AddressCountry,
		&u.LastLoginAt, &u.LastNotificationsViewedAt,
		&u.DaysBetweenOrderNotifications, &u.OrderNotificationsStartAt,
		&u.OrderNotificationsNextAt, &u.PendingOrderNotification,
		&u.OrderNotificationsViaEmail, &u.LastNotificationSentAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}
