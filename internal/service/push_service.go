package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/outings/internal/apperr"
	"github.com/mmynk/outings/internal/models"
	"github.com/mmynk/outings/internal/reminder"
	"github.com/mmynk/outings/internal/storage"
	"github.com/mmynk/outings/pkg/api"
)

var (
	ErrSweepDisabled  = errors.New("reminder trigger is not configured")
	ErrMissingToken   = errors.New("trigger token required")
	ErrInvalidTrigger = errors.New("invalid trigger token")
)

// Sweeper runs a reminder sweep.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (reminder.SweepResult, error)
}

// PushService implements the Connect PushService.
type PushService struct {
	store        storage.SubscriptionStore
	sweeper      Sweeper
	publicKey    string
	triggerToken string
	now          func() time.Time
}

// NewPushService creates a PushService. publicKey is the VAPID key handed to
// browsers; an empty triggerToken disables RunReminderSweep.
func NewPushService(store storage.SubscriptionStore, sweeper Sweeper, publicKey, triggerToken string) *PushService {
	return &PushService{
		store:        store,
		sweeper:      sweeper,
		publicKey:    publicKey,
		triggerToken: triggerToken,
		now:          time.Now,
	}
}

// Subscribe stores or refreshes a browser push subscription.
func (s *PushService) Subscribe(ctx context.Context, req *connect.Request[api.PushSubscribeRequest]) (*connect.Response[api.PushSubscribeResponse], error) {
	username := strings.TrimSpace(nameOr(ctx, req.Msg.Username))
	slog.Info("PushSubscribe request received", "username", username, "groups_count", len(req.Msg.GroupIDs))

	sub := &models.PushSubscription{
		Endpoint: strings.TrimSpace(req.Msg.Endpoint),
		P256dh:   strings.TrimSpace(req.Msg.Keys.P256dh),
		Auth:     strings.TrimSpace(req.Msg.Keys.Auth),
		Username: username,
		GroupIDs: req.Msg.GroupIDs,
	}
	if err := validateSubscription(sub); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.UpsertSubscription(ctx, sub); err != nil {
		slog.Error("PushSubscribe failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Push subscription stored", "username", username)

	return connect.NewResponse(&api.PushSubscribeResponse{}), nil
}

// Unsubscribe deletes a push subscription. Unknown endpoints are ignored.
func (s *PushService) Unsubscribe(ctx context.Context, req *connect.Request[api.PushUnsubscribeRequest]) (*connect.Response[api.PushUnsubscribeResponse], error) {
	slog.Info("PushUnsubscribe request received")

	err := s.store.DeleteSubscription(ctx, strings.TrimSpace(req.Msg.Endpoint))
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		slog.Error("PushUnsubscribe failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.PushUnsubscribeResponse{}), nil
}

// VAPIDPublicKey returns the application server key.
func (s *PushService) VAPIDPublicKey(ctx context.Context, req *connect.Request[api.VAPIDPublicKeyRequest]) (*connect.Response[api.VAPIDPublicKeyResponse], error) {
	return connect.NewResponse(&api.VAPIDPublicKeyResponse{PublicKey: s.publicKey}), nil
}

// RunReminderSweep runs a sweep for an external scheduler. The caller must
// present the trigger token as a bearer token.
func (s *PushService) RunReminderSweep(ctx context.Context, req *connect.Request[api.RunReminderSweepRequest]) (*connect.Response[api.RunReminderSweepResponse], error) {
	if err := s.checkTrigger(req.Header().Get("Authorization")); err != nil {
		return nil, err
	}

	now := s.now()
	if req.Msg.Now != nil {
		now = *req.Msg.Now
	}
	slog.Info("RunReminderSweep request received", "now", now)

	result, err := s.sweeper.Sweep(ctx, now)
	if err != nil {
		slog.Error("RunReminderSweep failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RunReminderSweepResponse{
		EventsNotified:     result.EventsNotified,
		RecipientsNotified: result.RecipientsNotified,
	}), nil
}

func (s *PushService) checkTrigger(authHeader string) error {
	if s.triggerToken == "" {
		return connect.NewError(connect.CodePermissionDenied, ErrSweepDisabled)
	}
	if authHeader == "" {
		return connect.NewError(connect.CodeUnauthenticated, ErrMissingToken)
	}

	// Parse Bearer token
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return connect.NewError(connect.CodeUnauthenticated, ErrInvalidTrigger)
	}
	if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(s.triggerToken)) != 1 {
		return connect.NewError(connect.CodeUnauthenticated, ErrInvalidTrigger)
	}
	return nil
}

func validateSubscription(sub *models.PushSubscription) error {
	u, err := url.Parse(sub.Endpoint)
	switch {
	case sub.Endpoint == "":
		return apperr.Invalid("endpoint", "is required")
	case err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "":
		return apperr.Invalid("endpoint", "must be an absolute http(s) URL")
	case sub.P256dh == "":
		return apperr.Invalid("keys.p256dh", "is required")
	case sub.Auth == "":
		return apperr.Invalid("keys.auth", "is required")
	case sub.Username == "":
		return apperr.Invalid("username", "is required")
	}
	return nil
}
