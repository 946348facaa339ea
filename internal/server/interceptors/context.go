package interceptors

import (
	"context"

	"github.com/omerA/v0-guest-event-app/internal/security"
)

type contextKey struct{ name string }

var (
	guestKey = contextKey{"guest_session"}
	adminKey = contextKey{"admin"}
)

// WithGuest returns a context carrying the decoded guest session.
// Handlers read the (event, phone) pair via GetGuest and never from the request body.
func WithGuest(ctx context.Context, s security.Session) context.Context {
	return context.WithValue(ctx, guestKey, s)
}

// GetGuest returns the guest session from context and true if set; otherwise the zero Session, false.
func GetGuest(ctx context.Context) (security.Session, bool) {
	s, ok := ctx.Value(guestKey).(security.Session)
	return s, ok
}

// WithAdmin returns a context marked as authenticated with the admin token.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey, true)
}

// IsAdmin reports whether the context was authenticated with the admin token.
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(adminKey).(bool)
	return v
}
