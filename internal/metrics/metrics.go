// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Subscribe results.
const (
	ResultAccepted          = "accepted"
	ResultFull              = "full"
	ResultAlreadySubscribed = "already_subscribed"
	ResultPast              = "past"
	ResultNotFound          = "not_found"
	ResultError             = "error"
)

// Push delivery outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeGone      = "gone"
	OutcomeFailed    = "failed"
)

var (
	SubscribeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "outings",
		Name:      "subscribe_total",
		Help:      "Subscribe attempts by result.",
	}, []string{"result"})

	EventsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "outings",
		Name:      "events_created_total",
		Help:      "Event instances created, counting every occurrence of a series.",
	})

	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "outings",
		Name:      "comments_created_total",
		Help:      "Comments posted.",
	})

	PushDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "outings",
		Name:      "push_deliveries_total",
		Help:      "Web Push deliveries by outcome.",
	}, []string{"outcome"})

	ReminderEventsClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "outings",
		Name:      "reminder_events_claimed_total",
		Help:      "Events claimed by reminder sweeps.",
	})

	ReminderSweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "outings",
		Name:      "reminder_sweep_duration_seconds",
		Help:      "Duration of reminder sweeps.",
		Buckets:   prometheus.DefBuckets,
	})
)
