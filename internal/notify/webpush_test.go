package notify

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/mmynk/outings/internal/models"
)

type browser struct {
	key  *ecdh.PrivateKey
	auth []byte
}

func newBrowser(t *testing.T) *browser {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate browser key: %v", err)
	}
	auth := make([]byte, 16)
	rand.Read(auth)
	return &browser{key: key, auth: auth}
}

func (b *browser) subscription(endpoint string) *models.PushSubscription {
	return &models.PushSubscription{
		Endpoint: endpoint,
		P256dh:   base64.RawURLEncoding.EncodeToString(b.key.PublicKey().Bytes()),
		Auth:     base64.RawURLEncoding.EncodeToString(b.auth),
		Username: "Alice",
	}
}

func hkdfBytes(t *testing.T, secret, salt, info []byte, n int) []byte {
	t.Helper()
	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), out); err != nil {
		t.Fatalf("hkdf failed: %v", err)
	}
	return out
}

// decrypt reverses an aes128gcm body the way a user agent does.
func (b *browser) decrypt(t *testing.T, body []byte) []byte {
	t.Helper()
	if len(body) < 21 {
		t.Fatalf("body too short: %d", len(body))
	}
	salt := body[:16]
	if rs := binary.BigEndian.Uint32(body[16:20]); rs != 4096 {
		t.Errorf("expected record size 4096, got %d", rs)
	}
	idlen := int(body[20])
	asPublic := body[21 : 21+idlen]
	ciphertext := body[21+idlen:]

	asKey, err := ecdh.P256().NewPublicKey(asPublic)
	if err != nil {
		t.Fatalf("invalid sender key: %v", err)
	}
	secret, err := b.key.ECDH(asKey)
	if err != nil {
		t.Fatalf("ecdh failed: %v", err)
	}

	keyInfo := append([]byte("WebPush: info\x00"), b.key.PublicKey().Bytes()...)
	keyInfo = append(keyInfo, asPublic...)
	ikm := hkdfBytes(t, secret, b.auth, keyInfo, 32)
	cek := hkdfBytes(t, ikm, salt, []byte("Content-Encoding: aes128gcm\x00"), 16)
	nonce := hkdfBytes(t, ikm, salt, []byte("Content-Encoding: nonce\x00"), 12)

	block, _ := aes.NewCipher(cek)
	gcm, _ := cipher.NewGCM(block)
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		t.Fatalf("failed to decrypt: %v", err)
	}
	// The record may be zero-padded after the last-record delimiter.
	end := bytes.LastIndexByte(plain, 0x02)
	if end < 0 || len(bytes.Trim(plain[end+1:], "\x00")) != 0 {
		t.Fatalf("missing last-record delimiter")
	}
	return plain[:end]
}

// ecdsaPublicKey converts an uncompressed P-256 point for token checks.
func ecdsaPublicKey(point []byte) *ecdsa.PublicKey {
	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(point[1:33]),
		Y:     new(big.Int).SetBytes(point[33:65]),
	}
}

func newTestWebPush(t *testing.T) *WebPush {
	t.Helper()
	keys, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("GenerateVAPIDKeys failed: %v", err)
	}
	wp, err := NewWebPush(WebPushConfig{Keys: *keys, Subject: "mailto:admin@example.com", TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewWebPush failed: %v", err)
	}
	return wp
}

func parseVAPIDHeader(t *testing.T, header string) (token, key string) {
	t.Helper()
	if !strings.HasPrefix(header, "vapid ") {
		t.Fatalf("unexpected Authorization header: %q", header)
	}
	for _, part := range strings.Split(strings.TrimPrefix(header, "vapid "), ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "t="):
			token = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, "k="):
			key = strings.TrimPrefix(part, "k=")
		}
	}
	return token, key
}

func TestWebPush_Send(t *testing.T) {
	wp := newTestWebPush(t)
	b := newBrowser(t)

	var (
		gotPayload Payload
		gotHeader  http.Header
		gotBody    []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	want := Payload{Title: "Reminder: Zoo", Body: "Zoo starts soon.", URL: "/events/e1"}
	if err := wp.Send(context.Background(), b.subscription(srv.URL+"/push/abc"), want); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotHeader.Get("Content-Encoding") != "aes128gcm" {
		t.Errorf("unexpected Content-Encoding: %q", gotHeader.Get("Content-Encoding"))
	}
	if gotHeader.Get("Urgency") != "normal" {
		t.Errorf("unexpected Urgency: %q", gotHeader.Get("Urgency"))
	}
	if gotHeader.Get("TTL") != "3600" {
		t.Errorf("unexpected TTL: %q", gotHeader.Get("TTL"))
	}

	if err := json.Unmarshal(b.decrypt(t, gotBody), &gotPayload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if gotPayload != want {
		t.Errorf("payload mismatch: got %+v, want %+v", gotPayload, want)
	}

	token, key := parseVAPIDHeader(t, gotHeader.Get("Authorization"))
	if key != wp.PublicKey() {
		t.Errorf("k= does not carry the public key")
	}
	pub, _ := base64.RawURLEncoding.DecodeString(key)
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return ecdsaPublicKey(pub), nil
	}, jwt.WithValidMethods([]string{"ES256"}), jwt.WithAudience(srv.URL), jwt.WithExpirationRequired())
	if err != nil {
		t.Fatalf("VAPID token rejected: %v", err)
	}
	if sub, _ := parsed.Claims.GetSubject(); sub != "mailto:admin@example.com" {
		t.Errorf("unexpected subject: %q", sub)
	}
}

func TestWebPush_SendStatus(t *testing.T) {
	wp := newTestWebPush(t)
	b := newBrowser(t)

	tests := []struct {
		status   int
		wantErr  bool
		wantGone bool
	}{
		{http.StatusCreated, false, false},
		{http.StatusOK, false, false},
		{http.StatusNotFound, true, true},
		{http.StatusGone, true, true},
		{http.StatusTooManyRequests, true, false},
		{http.StatusInternalServerError, true, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := wp.Send(context.Background(), b.subscription(srv.URL), Payload{Title: "t"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if errors.Is(err, ErrGone) != tt.wantGone {
				t.Errorf("ErrGone = %v, want %v (err: %v)", errors.Is(err, ErrGone), tt.wantGone, err)
			}
		})
	}
}

func TestWebPush_RejectsBadSubscription(t *testing.T) {
	wp := newTestWebPush(t)
	sub := &models.PushSubscription{Endpoint: "https://push.example/x", P256dh: "not-a-key", Auth: "AAAA"}

	err := wp.Send(context.Background(), sub, Payload{Title: "t"})
	if err == nil || errors.Is(err, ErrGone) {
		t.Errorf("expected transient error for malformed keys, got %v", err)
	}
}

func TestNewWebPush_Validation(t *testing.T) {
	keys, _ := GenerateVAPIDKeys()
	other, _ := GenerateVAPIDKeys()

	tests := []struct {
		name string
		cfg  WebPushConfig
	}{
		{"missing subject", WebPushConfig{Keys: *keys}},
		{"bad private key", WebPushConfig{Keys: VAPIDKeys{PrivateKey: "xx"}, Subject: "mailto:a@b.c"}},
		{"mismatched public key", WebPushConfig{Keys: VAPIDKeys{PublicKey: other.PublicKey, PrivateKey: keys.PrivateKey}, Subject: "mailto:a@b.c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWebPush(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewWebPush_DerivesPublicKey(t *testing.T) {
	keys, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("GenerateVAPIDKeys failed: %v", err)
	}

	wp, err := NewWebPush(WebPushConfig{
		Keys:    VAPIDKeys{PrivateKey: keys.PrivateKey},
		Subject: "https://outings.example.com/contact",
	})
	if err != nil {
		t.Fatalf("NewWebPush failed: %v", err)
	}
	if wp.PublicKey() != keys.PublicKey {
		t.Errorf("derived key %q, want %q", wp.PublicKey(), keys.PublicKey)
	}
}
