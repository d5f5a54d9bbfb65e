package notify

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/mmynk/outings/internal/models"
)

// VAPIDKeys is an application server key pair, base64url encoded without
// padding: the raw 32-byte private scalar and the 65-byte uncompressed public
// point.
type VAPIDKeys struct {
	PublicKey  string
	PrivateKey string
}

// GenerateVAPIDKeys creates a fresh P-256 key pair.
func GenerateVAPIDKeys() (*VAPIDKeys, error) {
	priv, pub, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to generate VAPID keys: %w", err)
	}
	return &VAPIDKeys{PublicKey: pub, PrivateKey: priv}, nil
}

// WebPushConfig configures a WebPush sender.
type WebPushConfig struct {
	Keys    VAPIDKeys
	Subject string // mailto: or https: contact URI
	TTL     time.Duration
	Client  *http.Client
}

// WebPush sends encrypted notifications with VAPID authorization.
type WebPush struct {
	options webpush.Options
}

// NewWebPush validates the key pair and returns a sender.
func NewWebPush(cfg WebPushConfig) (*WebPush, error) {
	if cfg.Subject == "" {
		return nil, errors.New("VAPID subject is required")
	}
	publicKey, err := checkKeyPair(cfg.Keys)
	if err != nil {
		return nil, err
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &WebPush{options: webpush.Options{
		HTTPClient: client,
		// webpush-go adds the mailto: scheme itself unless the subject is https.
		Subscriber:      strings.TrimPrefix(cfg.Subject, "mailto:"),
		TTL:             int(ttl.Seconds()),
		Urgency:         webpush.UrgencyNormal,
		VAPIDPublicKey:  publicKey,
		VAPIDPrivateKey: cfg.Keys.PrivateKey,
	}}, nil
}

// PublicKey returns the application server key browsers subscribe with.
func (w *WebPush) PublicKey() string {
	return w.options.VAPIDPublicKey
}

// Send encrypts payload for sub and posts it to the push service.
func (w *WebPush) Send(ctx context.Context, sub *models.PushSubscription, payload Payload) error {
	message, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	opts := w.options
	resp, err := webpush.SendNotificationWithContext(ctx, message, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, &opts)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: status %d", ErrGone, resp.StatusCode)
	default:
		return fmt.Errorf("push service responded with status %d", resp.StatusCode)
	}
}

// checkKeyPair fails fast on a malformed or mismatched configuration and
// returns the public key, derived when not configured.
func checkKeyPair(keys VAPIDKeys) (string, error) {
	scalar, err := decodeKey(keys.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("invalid VAPID private key: %w", err)
	}
	priv, err := ecdh.P256().NewPrivateKey(scalar)
	if err != nil {
		return "", fmt.Errorf("invalid VAPID private key: %w", err)
	}
	derived := priv.PublicKey().Bytes()
	if keys.PublicKey != "" {
		given, err := decodeKey(keys.PublicKey)
		if err != nil || !bytes.Equal(given, derived) {
			return "", errors.New("VAPID public key does not match private key")
		}
	}
	return base64.RawURLEncoding.EncodeToString(derived), nil
}

// decodeKey accepts base64 keys as browsers and tools emit them: URL or
// standard alphabet, with or without padding.
func decodeKey(s string) ([]byte, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	if s == "" {
		return nil, errors.New("empty key")
	}
	if strings.ContainsAny(s, "+/") {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return base64.RawURLEncoding.DecodeString(s)
}
