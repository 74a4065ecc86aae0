// Package identity implements the Data Gateway's user operations: dual-ID
// resolution, registration, login, profile and preference mutation, and
// password-gated account changes.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/timel-e/core/auth"
	"github.com/timel-e/core/internal/apperr"
	"github.com/timel-e/core/internal/database"
	"github.com/timel-e/core/utils"
)

// Service wraps the identity query surface with business rules. namespace
// derives external_id for legacy-imported users: uuid_v5(namespace, decimal(internal_id)).
type Service struct {
	q         *database.Queries
	namespace uuid.UUID
}

func NewService(q *database.Queries, namespace uuid.UUID) *Service {
	return &Service{q: q, namespace: namespace}
}

// LegacyExternalID computes the deterministic external_id for a
// legacy-imported user. New users get a random UUID instead.
func LegacyExternalID(namespace uuid.UUID, internalID int64) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(strconv.FormatInt(internalID, 10)))
}

// Profile is the external-facing view of a user: every field a response may
// serialize. internal_id deliberately has no place here.
type Profile struct {
	ExternalID                    uuid.UUID
	FirstName                     string
	LastName                      string
	Email                         string
	AddressStreet                 string
	AddressCity                   string
	AddressPostal                 string
	AddressCountry                string
	LastLoginAt                   sql.NullTime
	LastNotificationsViewedAt     time.Time
	DaysBetweenOrderNotifications int32
	OrderNotificationsStartAt     time.Time
	OrderNotificationsNextAt      time.Time
	PendingOrderNotification      bool
	OrderNotificationsViaEmail    bool
	LastNotificationSentAt        sql.NullTime
	CreatedAt                     time.Time
	UpdatedAt                     time.Time
	HasActiveCart                 bool
}

func profileFromUser(u database.User) Profile {
	return Profile{
		ExternalID:                     u.ExternalID,
		FirstName:                      u.FirstName,
		LastName:                       u.LastName,
		Email:                          u.Email,
		AddressStreet:                  u.AddressStreet.String,
		AddressCity:                    u.AddressCity.String,
		AddressPostal:                  u.AddressPostal.String,
		AddressCountry:                 u.AddressCountry.String,
		LastLoginAt:                    u.LastLoginAt,
		LastNotificationsViewedAt:      u.LastNotificationsViewedAt,
		DaysBetweenOrderNotifications:  u.DaysBetweenOrderNotifications,
		OrderNotificationsStartAt:      u.OrderNotificationsStartAt,
		OrderNotificationsNextAt:       u.OrderNotificationsNextAt,
		PendingOrderNotification:       u.PendingOrderNotification,
		OrderNotificationsViaEmail:     u.OrderNotificationsViaEmail,
		LastNotificationSentAt:         u.LastNotificationSentAt,
		CreatedAt:                      u.CreatedAt,
		UpdatedAt:                      u.UpdatedAt,
	}
}

// NextNotificationAt implements the invariant in the notification preference
// model: start itself when start is not before now, otherwise the smallest
// start+k*interval strictly after now.
func NextNotificationAt(start time.Time, days int32, now time.Time) time.Time {
	interval := time.Duration(days) * 24 * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	floor := now
	if start.After(floor) {
		floor = start
	}
	if !start.Before(floor) {
		return start
	}
	elapsed := floor.Sub(start)
	k := elapsed / interval
	next := start.Add(k * interval)
	for !next.After(floor) {
		next = next.Add(interval)
	}
	return next
}

type RegisterParams struct {
	FirstName                     string
	LastName                      string
	Email                         string
	Password                      string
	DaysBetweenOrderNotifications int32
	OrderNotificationsStartAt     time.Time
	OrderNotificationsViaEmail    bool
}

func (s *Service) Register(ctx context.Context, p RegisterParams) (Profile, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" || p.FirstName == "" || p.LastName == "" || p.Password == "" {
		return Profile{}, apperr.New(apperr.InvalidInput, "firstName, lastName, emailAddress, and password are required")
	}

	exists, err := s.q.CheckUserExistsByEmail(ctx, email)
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.Internal, "checking email uniqueness failed", err)
	}
	if exists {
		return Profile{}, apperr.New(apperr.Conflict, "an account with this email already exists")
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.InvalidInput, "password does not meet requirements", err)
	}

	now := time.Now().UTC()
	startAt := p.OrderNotificationsStartAt
	if startAt.IsZero() {
		startAt = now
	}
	days := p.DaysBetweenOrderNotifications
	if days <= 0 {
		days = 7
	}
	nextAt := NextNotificationAt(startAt, days, now)

	u, err := s.q.CreateUser(ctx, database.CreateUserParams{
		ExternalID:                    utils.NewUUID(),
		FirstName:                     p.FirstName,
		LastName:                      p.LastName,
		Email:                         email,
		PasswordHash:                  hash,
		DaysBetweenOrderNotifications: days,
		OrderNotificationsStartAt:     startAt,
		OrderNotificationsNextAt:      nextAt,
		OrderNotificationsViaEmail:    p.OrderNotificationsViaEmail,
	})
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.Internal, "creating user failed", err)
	}
	return profileFromUser(u), nil
}

func (s *Service) Login(ctx context.Context, email, password string) (Profile, error) {
	u, err := s.q.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, apperr.New(apperr.AuthFailed, "invalid email or password")
		}
		return Profile{}, apperr.Wrap(apperr.Internal, "looking up user failed", err)
	}

	ok, err := auth.CheckPasswordHash(password, u.PasswordHash)
	if err != nil || !ok {
		return Profile{}, apperr.New(apperr.AuthFailed, "invalid email or password")
	}

	now := time.Now().UTC()
	if err := s.q.UpdateLastLogin(ctx, u.InternalID, now); err != nil {
		return Profile{}, apperr.Wrap(apperr.Internal, "updating last login failed", err)
	}
	u.LastLoginAt = sql.NullTime{Time: now, Valid: true}

	profile := profileFromUser(u)
	if _, err := s.q.GetCartByUserID(ctx, u.InternalID); err == nil {
		profile.HasActiveCart = true
	} else if !errors.Is(err, sql.ErrNoRows) {
		return Profile{}, apperr.Wrap(apperr.Internal, "checking cart failed", err)
	}
	return profile, nil
}

// ResolveInternalID maps an external UUID to its internal id, the mandatory
// first step of every external-facing identity operation.
func (s *Service) ResolveInternalID(ctx context.Context, externalID uuid.UUID) (int64, error) {
	u, err := s.q.GetUserByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperr.New(apperr.NotFound, "user not found")
		}
		return 0, apperr.Wrap(apperr.Internal, "resolving user failed", err)
	}
	return u.InternalID, nil
}

func (s *Service) GetByExternalID(ctx context.Context, externalID uuid.UUID) (Profile, error) {
	u, err := s.q.GetUserByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, apperr.New(apperr.NotFound, "user not found")
		}
		return Profile{}, apperr.Wrap(apperr.Internal, "looking up user failed", err)
	}
	profile := profileFromUser(u)
	if _, err := s.q.GetCartByUserID(ctx, u.InternalID); err == nil {
		profile.HasActiveCart = true
	} else if !errors.Is(err, sql.ErrNoRows) {
		return Profile{}, apperr.Wrap(apperr.Internal, "checking cart failed", err)
	}
	return profile, nil
}

// ProfilePatch carries only the fields present in an update request; a nil
// pointer means "not provided", distinct from an explicit empty string.
type ProfilePatch struct {
	FirstName      *string
	LastName       *string
	AddressStreet  *string
	AddressCity    *string
	AddressPostal  *string
	AddressCountry *string
}

func (p ProfilePatch) isEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.AddressStreet == nil &&
		p.AddressCity == nil && p.AddressPostal == nil && p.AddressCountry == nil
}

func (s *Service) UpdateProfile(ctx context.Context, externalID uuid.UUID, patch ProfilePatch) (Profile, error) {
	if patch.isEmpty() {
		return Profile{}, apperr.New(apperr.InvalidInput, "update requires at least one field")
	}
	internalID, err := s.ResolveInternalID(ctx, externalID)
	if err != nil {
		return Profile{}, err
	}

	if err := s.q.UpdateUserProfile(ctx, database.UpdateUserProfileParams{
		InternalID:     internalID,
		FirstName:      nullableString(patch.FirstName),
		LastName:       nullableString(patch.LastName),
		AddressStreet:  nullableString(patch.AddressStreet),
		AddressCity:    nullableString(patch.AddressCity),
		AddressPostal:  nullableString(patch.AddressPostal),
		AddressCountry: nullableString(patch.AddressCountry),
		UpdatedAt:      time.Now().UTC(),
	}); err != nil {
		return Profile{}, apperr.Wrap(apperr.Internal, "updating profile failed", err)
	}
	return s.GetByExternalID(ctx, externalID)
}

// NotificationPreferencesPatch mirrors ProfilePatch for the preference block;
// any present field recomputes order_notifications_next_at.
type NotificationPreferencesPatch struct {
	DaysBetweenOrderNotifications *int32
	OrderNotificationsStartAt     *time.Time
	OrderNotificationsViaEmail    *bool
}

func (s *Service) UpdateNotificationPreferences(ctx context.Context, externalID uuid.UUID, patch NotificationPreferencesPatch) (Profile, error) {
	internalID, err := s.ResolveInternalID(ctx, externalID)
	if err != nil {
		return Profile{}, err
	}
	current, err := s.q.GetUserByInternalID(ctx, internalID)
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.Internal, "looking up user failed", err)
	}

	days := current.DaysBetweenOrderNotifications
	if patch.DaysBetweenOrderNotifications != nil {
		days = *patch.DaysBetweenOrderNotifications
	}
	if days < 1 || days > 365 {
		return Profile{}, apperr.New(apperr.InvalidInput, "daysBetweenOrderNotifications must be between 1 and 365")
	}
	startAt := current.OrderNotificationsStartAt
	if patch.OrderNotificationsStartAt != nil {
		startAt = patch.OrderNotificationsStartAt.UTC()
	}
	viaEmail := current.OrderNotificationsViaEmail
	if patch.OrderNotificationsViaEmail != nil {
		viaEmail = *patch.OrderNotificationsViaEmail
	}

	now := time.Now().UTC()
	nextAt := NextNotificationAt(startAt, days, now)

	if err := s.q.UpdateNotificationPreferences(ctx, database.UpdateNotificationPreferencesParams{
		InternalID:                    internalID,
		DaysBetweenOrderNotifications: days,
		OrderNotificationsStartAt:     startAt,
		OrderNotificationsNextAt:      nextAt,
		OrderNotificationsViaEmail:    viaEmail,
		UpdatedAt:                     now,
	}); err != nil {
		return Profile{}, apperr.Wrap(apperr.Internal, "updating notification preferences failed", err)
	}
	return s.GetByExternalID(ctx, externalID)
}

func (s *Service) ChangePassword(ctx context.Context, externalID uuid.UUID, currentPassword, newPassword string) error {
	internalID, err := s.ResolveInternalID(ctx, externalID)
	if err != nil {
		return err
	}
	u, err := s.q.GetUserByInternalID(ctx, internalID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "looking up user failed", err)
	}
	if ok, err := auth.CheckPasswordHash(currentPassword, u.PasswordHash); err != nil || !ok {
		return apperr.New(apperr.AuthFailed, "current password is incorrect")
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.InvalidInput, "new password does not meet requirements", err)
	}
	if err := s.q.UpdatePassword(ctx, internalID, hash, time.Now().UTC()); err != nil {
		return apperr.Wrap(apperr.Internal, "updating password failed", err)
	}
	return nil
}

func (s *Service) ChangeEmail(ctx context.Context, externalID uuid.UUID, currentPassword, newEmail string) error {
	internalID, err := s.ResolveInternalID(ctx, externalID)
	if err != nil {
		return err
	}
	u, err := s.q.GetUserByInternalID(ctx, internalID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "looking up user failed", err)
	}
	if ok, err := auth.CheckPasswordHash(currentPassword, u.PasswordHash); err != nil || !ok {
		return apperr.New(apperr.AuthFailed, "current password is incorrect")
	}

	newEmail = strings.ToLower(strings.TrimSpace(newEmail))
	if newEmail == "" {
		return apperr.New(apperr.InvalidInput, "new email is required")
	}
	exists, err := s.q.CheckUserExistsByEmail(ctx, newEmail)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "checking email uniqueness failed", err)
	}
	if exists {
		return apperr.New(apperr.Conflict, "an account with this email already exists")
	}

	if err := s.q.UpdateEmail(ctx, internalID, newEmail, time.Now().UTC()); err != nil {
		return apperr.Wrap(apperr.Internal, "updating email failed", err)
	}
	return nil
}

func (s *Service) DeleteUser(ctx context.Context, externalID uuid.UUID, password string) error {
	internalID, err := s.ResolveInternalID(ctx, externalID)
	if err != nil {
		return err
	}
	u, err := s.q.GetUserByInternalID(ctx, internalID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "looking up user failed", err)
	}
	if ok, err := auth.CheckPasswordHash(password, u.PasswordHash); err != nil || !ok {
		return apperr.New(apperr.AuthFailed, "password is incorrect")
	}

	// orders.user_id carries no ON DELETE CASCADE: order history is a
	// financial record that must outlive the account it belongs to. Rather
	// than let the foreign key violation surface as an opaque Internal
	// error, reject the deletion up front with a clear Conflict.
	orderCount, err := s.q.CountOrdersByUser(ctx, internalID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "checking order history failed", err)
	}
	if orderCount > 0 {
		return apperr.New(apperr.Conflict, "account has order history and cannot be deleted")
	}

	if err := s.q.DeleteUser(ctx, internalID); err != nil {
		return apperr.Wrap(apperr.Internal, "deleting user failed", err)
	}
	return nil
}

func (s *Service) MarkNotificationsViewed(ctx context.Context, externalID uuid.UUID) error {
	internalID, err := s.ResolveInternalID(ctx, externalID)
	if err != nil {
		return err
	}
	if err := s.q.MarkNotificationsViewed(ctx, internalID, time.Now().UTC()); err != nil {
		return apperr.Wrap(apperr.Internal, "marking notifications viewed failed", err)
	}
	return nil
}

// NotificationPage is the derived order-status notification feed: every
// status-history row newer than the user's last acknowledgement.
type NotificationPage struct {
	Notifications []database.OrderStatusNotification
	Unseen        int64
}

// ListNotifications returns the user's order-status feed, paginated at the
// history-row level, alongside the count of rows still unseen.
func (s *Service) ListNotifications(ctx context.Context, externalID uuid.UUID, limit, offset int32) (NotificationPage, error) {
	internalID, err := s.ResolveInternalID(ctx, externalID)
	if err != nil {
		return NotificationPage{}, err
	}
	notifications, err := s.q.ListOrderStatusNotifications(ctx, internalID, limit, offset)
	if err != nil {
		return NotificationPage{}, apperr.Wrap(apperr.Internal, "listing notifications failed", err)
	}
	unseen, err := s.q.CountUnseenOrderStatusNotifications(ctx, internalID)
	if err != nil {
		return NotificationPage{}, apperr.Wrap(apperr.Internal, "counting unseen notifications failed", err)
	}
	return NotificationPage{Notifications: notifications, Unseen: unseen}, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
