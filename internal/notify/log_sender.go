package notify

import (
	"context"
	"log/slog"

	"github.com/mmynk/outings/internal/models"
)

// LogSender logs payloads instead of delivering them. Used when no VAPID keys
// are configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, sub *models.PushSubscription, payload Payload) error {
	slog.InfoContext(ctx, "Push notification (not delivered)",
		"username", sub.Username,
		"title", payload.Title,
		"body", payload.Body,
		"url", payload.URL,
	)
	return nil
}
