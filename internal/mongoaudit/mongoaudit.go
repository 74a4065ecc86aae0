// Package mongoaudit appends scheduler activity to an audit trail collection
// in MongoDB. Every document is write-once: the scheduler writes, nothing in
// the system reads it back. It exists for operators debugging reminder
// delivery after the fact, not for any decision the scheduler itself makes.
package mongoaudit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// EventKind names what happened during a scheduler tick.
type EventKind string

const (
	ReminderScheduled EventKind = "reminder_scheduled"
	EmailSent         EventKind = "email_sent"
	EmailFailed       EventKind = "email_failed"
)

// Event is one append-only audit document. UserExternalID is the user's
// public identifier, never the internal_id, so the audit trail stays
// meaningful if read outside the database that assigned internal_id.
type Event struct {
	ID             string    `bson:"_id,omitempty"`
	Kind           EventKind `bson:"kind"`
	UserExternalID string    `bson:"user_external_id"`
	ScheduledFor   time.Time `bson:"scheduled_for"`
	OccurredAt     time.Time `bson:"occurred_at"`
	Detail         string    `bson:"detail,omitempty"`
}

// inserter is the narrow slice of *mongo.Collection this package needs,
// kept as an interface so tests can substitute a fake.
type inserter interface {
	InsertOne(ctx context.Context, document any) (*mongo.InsertOneResult, error)
}

// Service writes Events to the "scheduler_audit" collection.
type Service struct {
	collection inserter
}

func NewService(db *mongo.Database) *Service {
	return &Service{collection: db.Collection("scheduler_audit")}
}

// RecordReminderScheduled logs that a user's next notification time was
// computed and advanced during a scheduler sweep.
func (s *Service) RecordReminderScheduled(ctx context.Context, userExternalID string, scheduledFor time.Time) error {
	return s.insert(ctx, Event{
		Kind:           ReminderScheduled,
		UserExternalID: userExternalID,
		ScheduledFor:   scheduledFor,
		OccurredAt:     time.Now().UTC(),
	})
}

// RecordEmailSent logs a successful reminder email dispatch.
func (s *Service) RecordEmailSent(ctx context.Context, userExternalID string, scheduledFor time.Time) error {
	return s.insert(ctx, Event{
		Kind:           EmailSent,
		UserExternalID: userExternalID,
		ScheduledFor:   scheduledFor,
		OccurredAt:     time.Now().UTC(),
	})
}

// RecordEmailFailed logs a failed reminder email dispatch. detail carries
// the sanitized error; the notification row is still advanced regardless of
// delivery outcome, so this is observational only.
func (s *Service) RecordEmailFailed(ctx context.Context, userExternalID string, scheduledFor time.Time, detail string) error {
	return s.insert(ctx, Event{
		Kind:           EmailFailed,
		UserExternalID: userExternalID,
		ScheduledFor:   scheduledFor,
		OccurredAt:     time.Now().UTC(),
		Detail:         detail,
	})
}

func (s *Service) insert(ctx context.Context, ev Event) error {
	if ev.ID == "" {
		ev.ID = bson.NewObjectID().Hex()
	}
	_, err := s.collection.InsertOne(ctx, ev)
	if err != nil {
		return fmt.Errorf("mongoaudit: insert failed: %w", err)
	}
	return nil
}
