// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/mmynk/outings/internal/models"
)

// EventFilter selects events for listing.
type EventFilter struct {
	// GroupIDs includes events of these groups.
	GroupIDs []string

	// IncludeUngrouped includes events without a group.
	IncludeUngrouped bool

	// From excludes events starting before this time when non-zero.
	From time.Time
}

// EventStore holds events, their attendance and their comments.
// Errors wrap the sentinels of package apperr.
type EventStore interface {
	// CreateEvents persists all events in one transaction: either every
	// event is stored or none is. IDs and CreatedAt are filled in.
	CreateEvents(ctx context.Context, events []*models.Event) error

	// GetEvent retrieves an event with its attendees in join order.
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)

	// ListEvents returns matching events ordered by start date.
	ListEvents(ctx context.Context, filter EventFilter) ([]*models.Event, error)

	// ListSeries returns the instances of a series ordered by start date.
	ListSeries(ctx context.Context, seriesID string) ([]*models.Event, error)

	// UpdateEvent rewrites the editable fields of an event. Attendees are
	// never touched. Fails with a validation error on maxParticipants when
	// the new capacity is below the committed attendee count.
	UpdateEvent(ctx context.Context, event *models.Event) error

	// DeleteEvent removes one event with its attendees and comments.
	DeleteEvent(ctx context.Context, eventID string) error

	// AddAttendee atomically appends name if the event exists, has not
	// started at now, does not already list name (case-insensitive) and is
	// under capacity. Returns the attendees after the append.
	AddAttendee(ctx context.Context, eventID, name string, now time.Time) ([]string, error)

	// RemoveAttendee removes name (case-insensitive) if present.
	RemoveAttendee(ctx context.Context, eventID, name string) ([]string, error)

	// CreateComment appends a comment. ID and CreatedAt are filled in.
	CreateComment(ctx context.Context, comment *models.Comment) error

	// ListComments returns comments of an event in creation order.
	ListComments(ctx context.Context, eventID string) ([]*models.Comment, error)
}

// GroupStore holds groups.
type GroupStore interface {
	// CreateGroup persists a group. Fails with apperr.ErrConflict when the
	// code is taken.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetGroupByCode(ctx context.Context, code string) (*models.Group, error)

	// DeleteGroup removes a group and the events attached to it.
	DeleteGroup(ctx context.Context, groupID string) error
}

// SubscriptionStore holds push subscriptions.
type SubscriptionStore interface {
	// UpsertSubscription creates or refreshes a subscription by endpoint,
	// replacing its keys, username and groups.
	UpsertSubscription(ctx context.Context, sub *models.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptionsByUsernames(ctx context.Context, names []string) ([]*models.PushSubscription, error)
	ListSubscriptionsByGroup(ctx context.Context, groupID string) ([]*models.PushSubscription, error)
}

// ReminderStore is the reminder dispatcher's view of the store.
type ReminderStore interface {
	// ClaimUpcomingEvents flags and returns, in one transaction, the events
	// starting in (from, to] that were never flagged. An event is returned
	// by at most one call.
	ClaimUpcomingEvents(ctx context.Context, from, to, claimedAt time.Time) ([]*models.Event, error)
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	EventStore
	GroupStore
	SubscriptionStore
	ReminderStore

	// Close releases any resources held by the store.
	Close() error
}
