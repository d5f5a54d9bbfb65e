// Package reminder sends one reminder per recipient for events about to
// start.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/outings/internal/metrics"
	"github.com/mmynk/outings/internal/models"
	"github.com/mmynk/outings/internal/notify"
	"github.com/mmynk/outings/internal/storage"
)

// DefaultWindow is how far ahead a sweep looks.
const DefaultWindow = 24 * time.Hour

// Notifier is the part of notify.Notifier the dispatcher uses.
type Notifier interface {
	NotifyEvent(ctx context.Context, kind notify.Kind, event *models.Event, actor string, aud notify.Audience) (notify.Result, error)
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	EventsNotified     int `json:"eventsNotified"`
	RecipientsNotified int `json:"recipientsNotified"`
}

// Dispatcher runs reminder sweeps.
//
// Events are flagged in the same transaction that selects them, before any
// delivery is attempted. Overlapping sweeps therefore never pick the same
// event, and a delivery that fails on a flagged event is not retried.
type Dispatcher struct {
	store    storage.ReminderStore
	notifier Notifier
	window   time.Duration
}

// NewDispatcher creates a dispatcher. A non-positive window uses
// DefaultWindow.
func NewDispatcher(store storage.ReminderStore, notifier Notifier, window time.Duration) *Dispatcher {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Dispatcher{store: store, notifier: notifier, window: window}
}

// Sweep reminds attendees and group subscribers of events starting in
// (now, now+window]. Only the claim can fail the sweep; delivery problems
// are isolated per recipient and per event.
func (d *Dispatcher) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	start := time.Now()
	defer func() {
		metrics.ReminderSweepDuration.Observe(time.Since(start).Seconds())
	}()

	events, err := d.store.ClaimUpcomingEvents(ctx, now, now.Add(d.window), now)
	if err != nil {
		slog.Error("Reminder sweep failed", "error", err)
		return SweepResult{}, err
	}
	metrics.ReminderEventsClaimed.Add(float64(len(events)))

	var result SweepResult
	for _, ev := range events {
		res, err := d.notifier.NotifyEvent(ctx, notify.KindReminder, ev, "", notify.Audience{
			Names:   ev.Attendees,
			GroupID: ev.GroupID,
		})
		if err != nil {
			slog.Warn("Reminder not sent", "event_id", ev.ID, "error", err)
			continue
		}
		result.EventsNotified++
		result.RecipientsNotified += res.Delivered

		slog.Debug("Reminder sent",
			"event_id", ev.ID,
			"delivered", res.Delivered,
			"gone", res.Gone,
			"failed", res.Failed,
		)
	}

	slog.Info("Reminder sweep done",
		"claimed", len(events),
		"events_notified", result.EventsNotified,
		"recipients_notified", result.RecipientsNotified,
	)
	return result, nil
}
