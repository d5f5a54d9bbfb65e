package models

// PushSubscription is a Web Push endpoint registered by a browser.
// It is created or refreshed on opt-in and deleted once the push service
// reports the endpoint as gone.
type PushSubscription struct {
	// Endpoint is the push service URL. Unique.
	Endpoint string

	// P256dh is the base64url-encoded client public key (uncompressed P-256 point).
	P256dh string

	// Auth is the base64url-encoded 16-byte client auth secret.
	Auth string

	// Username is the display name the subscriber uses, matched against
	// event attendees and organizers.
	Username string

	// GroupIDs lists the groups the subscriber wants notifications for.
	GroupIDs []string

	CreatedAt int64
	UpdatedAt int64
}
