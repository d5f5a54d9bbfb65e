package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"connectrpc.com/connect"
	"golang.org/x/text/encoding/charmap"
)

// DisplayNameHeader carries the caller's self-declared display name. It is
// not authenticated: organizer checks built on it are a courtesy, not a
// security boundary.
//
// Clients should percent-encode the name (encodeURIComponent). Raw values
// are accepted too; bytes that are not UTF-8 are read as Latin-1, which is
// what browsers send for non-ASCII header values.
const DisplayNameHeader = "X-Display-Name"

const maxDisplayNameLen = 80

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// DisplayNameKey is the context key for the caller's display name.
const DisplayNameKey contextKey = "display_name"

// GetDisplayName extracts the display name from the context.
// Returns empty string if not found.
func GetDisplayName(ctx context.Context) string {
	name, _ := ctx.Value(DisplayNameKey).(string)
	return name
}

// WithDisplayName returns a copy of ctx carrying name.
func WithDisplayName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, DisplayNameKey, name)
}

// IdentityInterceptor copies the display name header, trimmed and capped,
// into the request context. Requests without the header proceed anonymously.
func IdentityInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if name := cleanDisplayName(req.Header().Get(DisplayNameHeader)); name != "" {
				ctx = WithDisplayName(ctx, name)
			}
			return next(ctx, req)
		}
	}
}

// IdentityHandler does the same for plain HTTP handlers.
func IdentityHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name := cleanDisplayName(r.Header.Get(DisplayNameHeader)); name != "" {
			r = r.WithContext(WithDisplayName(r.Context(), name))
		}
		next.ServeHTTP(w, r)
	})
}

func cleanDisplayName(name string) string {
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if !utf8.ValidString(name) {
		if s, err := charmap.ISO8859_1.NewDecoder().String(name); err == nil {
			name = s
		} else {
			name = strings.ToValidUTF8(name, "")
		}
	}
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > maxDisplayNameLen {
		name = string(r[:maxDisplayNameLen])
	}
	return name
}
