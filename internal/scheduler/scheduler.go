// Package scheduler runs the Data Gateway's notification tick loop: a
// single, process-wide cooperative worker that periodically advances due
// users' reminder state and best-effort dispatches the associated email.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"net/smtp"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/timel-e/core/internal/database"
	"github.com/timel-e/core/internal/identity"
	"github.com/timel-e/core/internal/mongoaudit"
)

// advisoryLockKey is an arbitrary constant shared by every Data Gateway
// replica. pg_try_advisory_lock makes the tick loop a singleton across
// replicas without any external coordination service.
const advisoryLockKey = 72173

// Mailer sends a single reminder email. Production wiring uses smtpMailer;
// tests substitute a fake.
type Mailer interface {
	Send(ctx context.Context, to, from string) error
}

// smtpMailer sends mail over a plain SMTP relay. No third-party mail client
// appears anywhere in the example corpus, so this is the one ambient
// concern in this module built directly on the standard library.
type smtpMailer struct {
	addr string
	auth smtp.Auth
}

func NewSMTPMailer(addr string, auth smtp.Auth) Mailer {
	return &smtpMailer{addr: addr, auth: auth}
}

func (m *smtpMailer) Send(_ context.Context, to, from string) error {
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: Your order reminder\r\n\r\nYou have a pending order notification.\r\n", to))
	return smtp.SendMail(m.addr, m.auth, from, []string{to}, msg)
}

// Scheduler owns the tick loop. It never holds cross-tick state beyond its
// own fields, matching the "no cross-tick state in memory" restart
// guarantee.
type Scheduler struct {
	db         *sql.DB
	audit      *mongoaudit.Service
	mailer     Mailer
	log        *logrus.Logger
	fromEmail  string
	tickPeriod time.Duration
}

func New(db *sql.DB, audit *mongoaudit.Service, mailer Mailer, log *logrus.Logger, fromEmail string, tickPeriod time.Duration) *Scheduler {
	if tickPeriod <= 0 {
		tickPeriod = 60 * time.Second
	}
	return &Scheduler{db: db, audit: audit, mailer: mailer, log: log, fromEmail: fromEmail, tickPeriod: tickPeriod}
}

// Run blocks, firing one tick per period until ctx is cancelled. It never
// returns an error: a failed tick is logged and the loop waits for the next
// period, since a transient failure must not bring down the whole process.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler: shutting down")
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.log.WithError(err).Error("scheduler: tick failed")
			}
		}
	}
}

// dueUser is the subset of a tick's result the email/audit phase needs,
// carried out of the transaction once it has committed.
type dueUser struct {
	email        string
	externalID   string
	viaEmail     bool
	scheduledFor time.Time
}

// Tick performs exactly one sweep: lock the singleton, select due users,
// advance their reminder state inside one transaction, commit, then
// best-effort dispatch email and audit records outside of it.
func (s *Scheduler) Tick(ctx context.Context) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return errors.Wrap(err, "scheduler: acquiring connection failed")
	}
	defer conn.Close()

	acquired, err := tryAdvisoryLock(ctx, conn)
	if err != nil {
		return errors.Wrap(err, "scheduler: advisory lock failed")
	}
	if !acquired {
		s.log.Debug("scheduler: another instance holds the tick lock, skipping")
		return nil
	}
	defer advisoryUnlock(ctx, conn)

	due, err := s.sweep(ctx, conn)
	if err != nil {
		return err
	}

	for _, u := range due {
		if u.viaEmail && s.mailer != nil {
			s.dispatchEmail(ctx, u)
		}
		s.recordScheduled(ctx, u)
	}
	return nil
}

// sweep runs the order-reminder sweep inside one transaction and returns
// the users it advanced, for the best-effort phase that follows.
func (s *Scheduler) sweep(ctx context.Context, conn *sql.Conn) ([]dueUser, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "scheduler: beginning transaction failed")
	}
	defer tx.Rollback()

	q := database.New(tx)
	now := time.Now().UTC()

	users, err := q.ListUsersDueForNotification(ctx, now)
	if err != nil {
		return nil, errors.Wrap(err, "scheduler: listing due users failed")
	}

	due := make([]dueUser, 0, len(users))
	for _, u := range users {
		next := identity.NextNotificationAt(u.OrderNotificationsStartAt, u.DaysBetweenOrderNotifications, now)
		if err := q.RecordNotificationSent(ctx, u.InternalID, now, next); err != nil {
			return nil, errors.Wrapf(err, "scheduler: recording notification for user %d failed", u.InternalID)
		}
		due = append(due, dueUser{
			email:        u.Email,
			externalID:   u.ExternalID.String(),
			viaEmail:     u.OrderNotificationsViaEmail,
			scheduledFor: next,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "scheduler: committing sweep failed")
	}
	return due, nil
}

// dispatchEmail sends the reminder outside the DB transaction. Delivery
// failure is logged and audited but never rolls back the scheduling state,
// per the coalescing policy's best-effort delivery guarantee.
func (s *Scheduler) dispatchEmail(ctx context.Context, u dueUser) {
	err := s.mailer.Send(ctx, u.email, s.fromEmail)
	if err != nil {
		s.log.WithError(err).WithField("user", u.externalID).Warn("scheduler: reminder email failed")
		if s.audit != nil {
			if auditErr := s.audit.RecordEmailFailed(ctx, u.externalID, u.scheduledFor, err.Error()); auditErr != nil {
				s.log.WithError(auditErr).Warn("scheduler: audit log failed")
			}
		}
		return
	}
	if s.audit != nil {
		if auditErr := s.audit.RecordEmailSent(ctx, u.externalID, u.scheduledFor); auditErr != nil {
			s.log.WithError(auditErr).Warn("scheduler: audit log failed")
		}
	}
}

func (s *Scheduler) recordScheduled(ctx context.Context, u dueUser) {
	if s.audit == nil {
		return
	}
	if err := s.audit.RecordReminderScheduled(ctx, u.externalID, u.scheduledFor); err != nil {
		s.log.WithError(err).Warn("scheduler: audit log failed")
	}
}

func tryAdvisoryLock(ctx context.Context, conn *sql.Conn) (bool, error) {
	var acquired bool
	err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, advisoryLockKey).Scan(&acquired)
	if err != nil {
		return false, err
	}
	return acquired, nil
}

func advisoryUnlock(ctx context.Context, conn *sql.Conn) {
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, advisoryLockKey); err != nil && !errors.Is(err, sql.ErrConnDone) {
		logrus.WithError(err).Warn("scheduler: advisory unlock failed")
	}
}
