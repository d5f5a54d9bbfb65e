// Package events creates outings and mediates every change to their
// attendance, comments and content.
package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mmynk/outings/internal/apperr"
	"github.com/mmynk/outings/internal/metrics"
	"github.com/mmynk/outings/internal/models"
	"github.com/mmynk/outings/internal/notify"
	"github.com/mmynk/outings/internal/recurrence"
	"github.com/mmynk/outings/internal/storage"
)

// Notifier is the part of notify.Notifier the manager uses.
type Notifier interface {
	NotifyEvent(ctx context.Context, kind notify.Kind, event *models.Event, actor string, aud notify.Audience) (notify.Result, error)
}

// SeriesResult is the outcome of CreateSeries. SeriesID is empty for a
// single event.
type SeriesResult struct {
	SeriesID string
	Events   []*models.Event
}

// Manager is the Capacity & Subscription Manager.
type Manager struct {
	events   storage.EventStore
	groups   storage.GroupStore
	notifier Notifier
	now      func() time.Time

	wg sync.WaitGroup
}

// NewManager creates a manager. notifier may be nil.
func NewManager(events storage.EventStore, groups storage.GroupStore, notifier Notifier) *Manager {
	return &Manager{
		events:   events,
		groups:   groups,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for the past-event gate.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Wait blocks until in-flight notifications are delivered.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// CreateSeries validates template, expands it and stores every instance in
// one batch. The template's ID, attendees and series id are ignored.
func (m *Manager) CreateSeries(ctx context.Context, template *models.Event, spec models.RecurrenceSpec) (*SeriesResult, error) {
	tmpl := *template
	if err := normalize(&tmpl); err != nil {
		return nil, err
	}
	if tmpl.GroupID != "" {
		if _, err := m.groups.GetGroup(ctx, tmpl.GroupID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Invalid("groupId", "group %s does not exist", tmpl.GroupID)
			}
			return nil, err
		}
	}

	instances, err := recurrence.Expand(&tmpl, spec)
	if err != nil {
		return nil, err
	}
	if err := m.events.CreateEvents(ctx, instances); err != nil {
		return nil, err
	}
	metrics.EventsCreated.Add(float64(len(instances)))

	if tmpl.GroupID != "" {
		m.notify(ctx, notify.KindNewEvent, instances[0], tmpl.Organizer, notify.Audience{
			GroupID: tmpl.GroupID,
			Exclude: tmpl.Organizer,
		})
	}

	return &SeriesResult{SeriesID: instances[0].SeriesID, Events: instances}, nil
}

// GetEvent returns one event with its attendees.
func (m *Manager) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	return m.events.GetEvent(ctx, eventID)
}

// ListEvents returns events matching filter ordered by date.
func (m *Manager) ListEvents(ctx context.Context, filter storage.EventFilter) ([]*models.Event, error) {
	return m.events.ListEvents(ctx, filter)
}

// ListSeries returns the remaining instances of a series.
func (m *Manager) ListSeries(ctx context.Context, seriesID string) ([]*models.Event, error) {
	return m.events.ListSeries(ctx, seriesID)
}

// Subscribe adds name to the event's attendees. The check-and-append runs
// as one store transaction so concurrent calls never overfill the event.
func (m *Manager) Subscribe(ctx context.Context, eventID, name string) ([]string, error) {
	name, err := cleanName("name", name)
	if err != nil {
		return nil, err
	}

	attendees, err := m.events.AddAttendee(ctx, eventID, name, m.now())
	metrics.SubscribeTotal.WithLabelValues(subscribeResult(err)).Inc()
	if err != nil {
		return nil, err
	}

	if ev, err := m.events.GetEvent(ctx, eventID); err == nil {
		m.notify(ctx, notify.KindJoined, ev, name, notify.Audience{
			Names:   []string{ev.Organizer},
			Exclude: name,
		})
	}
	return attendees, nil
}

// Unsubscribe removes name from the attendees. Leaving an event one is not
// part of succeeds without change.
func (m *Manager) Unsubscribe(ctx context.Context, eventID, name string) ([]string, error) {
	name, err := cleanName("name", name)
	if err != nil {
		return nil, err
	}
	return m.events.RemoveAttendee(ctx, eventID, name)
}

// AddComment appends a comment and returns it.
func (m *Manager) AddComment(ctx context.Context, eventID, author, content string) (*models.Comment, error) {
	author, err := cleanName("author", author)
	if err != nil {
		return nil, err
	}
	content, err = cleanName("content", content)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, apperr.Invalid("content", "must be at most %d characters", maxCommentLen)
	}

	comment := &models.Comment{EventID: eventID, Author: author, Content: content}
	if err := m.events.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	metrics.CommentsCreated.Inc()

	if ev, err := m.events.GetEvent(ctx, eventID); err == nil {
		m.notify(ctx, notify.KindComment, ev, author, notify.Audience{
			Names:   append([]string{ev.Organizer}, ev.Attendees...),
			Exclude: author,
		})
	}
	return comment, nil
}

// ListComments returns the comments of an event in creation order.
func (m *Manager) ListComments(ctx context.Context, eventID string) ([]*models.Comment, error) {
	return m.events.ListComments(ctx, eventID)
}

// UpdateEvent applies patch on behalf of requester, who must be the
// organizer. Attendees and comments are left untouched.
func (m *Manager) UpdateEvent(ctx context.Context, eventID string, patch *models.EventPatch, requester string) (*models.Event, error) {
	current, err := m.authorize(ctx, eventID, requester)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(current)
	if err := normalize(updated); err != nil {
		return nil, err
	}
	if err := m.events.UpdateEvent(ctx, updated); err != nil {
		return nil, err
	}

	stored, err := m.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	m.notify(ctx, notify.KindUpdated, stored, requester, notify.Audience{
		Names:   stored.Attendees,
		Exclude: requester,
	})
	return stored, nil
}

// DeleteEvent removes one instance on behalf of requester. Siblings of the
// same series are kept.
func (m *Manager) DeleteEvent(ctx context.Context, eventID, requester string) error {
	current, err := m.authorize(ctx, eventID, requester)
	if err != nil {
		return err
	}
	if err := m.events.DeleteEvent(ctx, eventID); err != nil {
		return err
	}

	m.notify(ctx, notify.KindCancelled, current, requester, notify.Audience{
		Names:   current.Attendees,
		Exclude: requester,
	})
	return nil
}

func (m *Manager) authorize(ctx context.Context, eventID, requester string) (*models.Event, error) {
	ev, err := m.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if requester == "" || !sameName(requester, ev.Organizer) {
		return nil, apperr.ErrForbidden
	}
	return ev, nil
}

// notify delivers in the background. Failures are logged by the notifier
// and never reach the caller.
func (m *Manager) notify(ctx context.Context, kind notify.Kind, ev *models.Event, actor string, aud notify.Audience) {
	if m.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if _, err := m.notifier.NotifyEvent(ctx, kind, ev, actor, aud); err != nil {
			slog.Warn("Notification failed", "kind", kind, "event_id", ev.ID, "error", err)
		}
	}()
}

func subscribeResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultAccepted
	case errors.Is(err, apperr.ErrEventFull):
		return metrics.ResultFull
	case errors.Is(err, apperr.ErrAlreadySubscribed):
		return metrics.ResultAlreadySubscribed
	case errors.Is(err, apperr.ErrEventPast):
		return metrics.ResultPast
	case errors.Is(err, apperr.ErrNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
