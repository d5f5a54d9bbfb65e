package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/outings/internal/apperr"
	"github.com/mmynk/outings/internal/metrics"
	"github.com/mmynk/outings/internal/models"
	"github.com/mmynk/outings/internal/storage"
)

// Audience selects the subscriptions a notification goes to.
type Audience struct {
	// Names matches subscriptions by username, case-insensitively.
	Names []string
	// GroupID matches subscriptions that opted in to the group.
	GroupID string
	// Exclude drops subscriptions of this username, usually the actor.
	Exclude string
}

// Result counts deliveries of one notification.
type Result struct {
	Delivered int
	Gone      int
	Failed    int
}

// Notifier resolves audiences to subscriptions and fans deliveries out.
type Notifier struct {
	store       storage.SubscriptionStore
	sender      Sender
	concurrency int
	loc         *time.Location
}

// NewNotifier creates a notifier. concurrency bounds in-flight deliveries;
// loc is used to render event dates.
func NewNotifier(store storage.SubscriptionStore, sender Sender, concurrency int, loc *time.Location) *Notifier {
	if concurrency <= 0 {
		concurrency = 8
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{store: store, sender: sender, concurrency: concurrency, loc: loc}
}

// NotifyEvent builds the payload for kind and sends it to aud.
func (n *Notifier) NotifyEvent(ctx context.Context, kind Kind, event *models.Event, actor string, aud Audience) (Result, error) {
	local := *event
	local.Date = event.Date.In(n.loc)
	payload, err := BuildPayload(kind, &local, actor)
	if err != nil {
		return Result{}, err
	}
	return n.Send(ctx, aud, payload)
}

// Send delivers payload once per distinct endpoint in aud. Delivery failures
// are counted, never returned; gone subscriptions are deleted. The error only
// reports a failed subscription lookup.
func (n *Notifier) Send(ctx context.Context, aud Audience, payload Payload) (Result, error) {
	subs, err := n.resolve(ctx, aud)
	if err != nil {
		return Result{}, err
	}
	if len(subs) == 0 {
		return Result{}, nil
	}

	var (
		mu     sync.Mutex
		result Result
		g      errgroup.Group
	)
	g.SetLimit(n.concurrency)

	for _, sub := range subs {
		g.Go(func() error {
			outcome := n.deliver(ctx, sub, payload)
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case metrics.OutcomeDelivered:
				result.Delivered++
			case metrics.OutcomeGone:
				result.Gone++
			default:
				result.Failed++
			}
			return nil
		})
	}
	g.Wait()

	slog.Debug("Notification sent",
		"title", payload.Title,
		"delivered", result.Delivered,
		"gone", result.Gone,
		"failed", result.Failed,
	)
	return result, nil
}

func (n *Notifier) deliver(ctx context.Context, sub *models.PushSubscription, payload Payload) string {
	err := n.sender.Send(ctx, sub, payload)
	switch {
	case err == nil:
		metrics.PushDeliveries.WithLabelValues(metrics.OutcomeDelivered).Inc()
		return metrics.OutcomeDelivered

	case errors.Is(err, ErrGone):
		metrics.PushDeliveries.WithLabelValues(metrics.OutcomeGone).Inc()
		slog.Info("Pruning gone push subscription", "username", sub.Username, "error", err)
		if err := n.store.DeleteSubscription(ctx, sub.Endpoint); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			slog.Error("Failed to delete gone push subscription", "username", sub.Username, "error", err)
		}
		return metrics.OutcomeGone

	default:
		metrics.PushDeliveries.WithLabelValues(metrics.OutcomeFailed).Inc()
		slog.Warn("Push delivery failed", "username", sub.Username, "error", err)
		return metrics.OutcomeFailed
	}
}

func (n *Notifier) resolve(ctx context.Context, aud Audience) ([]*models.PushSubscription, error) {
	exclude := strings.TrimSpace(aud.Exclude)

	var names []string
	for _, name := range aud.Names {
		name = strings.TrimSpace(name)
		if name == "" || (exclude != "" && strings.EqualFold(name, exclude)) {
			continue
		}
		names = append(names, name)
	}

	var found []*models.PushSubscription
	if len(names) > 0 {
		subs, err := n.store.ListSubscriptionsByUsernames(ctx, names)
		if err != nil {
			return nil, err
		}
		found = append(found, subs...)
	}
	if aud.GroupID != "" {
		subs, err := n.store.ListSubscriptionsByGroup(ctx, aud.GroupID)
		if err != nil {
			return nil, err
		}
		found = append(found, subs...)
	}

	seen := make(map[string]bool, len(found))
	subs := found[:0]
	for _, sub := range found {
		if seen[sub.Endpoint] {
			continue
		}
		if exclude != "" && strings.EqualFold(strings.TrimSpace(sub.Username), exclude) {
			continue
		}
		seen[sub.Endpoint] = true
		subs = append(subs, sub)
	}
	return subs, nil
}
