// Package notify delivers Web Push notifications to stored push
// subscriptions.
package notify

import (
	"context"
	"errors"

	"github.com/mmynk/outings/internal/models"
)

// ErrGone reports that a push endpoint no longer exists. The subscription
// should be deleted. Every other Send error is transient.
var ErrGone = errors.New("push subscription gone")

// Payload is the JSON document shown by the service worker.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
	Tag   string `json:"tag,omitempty"`
}

// Sender delivers one payload to one subscription.
type Sender interface {
	Send(ctx context.Context, sub *models.PushSubscription, payload Payload) error
}
