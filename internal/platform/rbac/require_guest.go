// Package rbac holds handler-side guards over the principal set by the auth interceptor.
package rbac

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/omerA/v0-guest-event-app/internal/security"
	"github.com/omerA/v0-guest-event-app/internal/server/interceptors"
)

// RequireGuest returns the guest session from ctx, or Unauthenticated when there is none.
// The returned pair is the only source of (event, phone) for guest handlers.
func RequireGuest(ctx context.Context) (security.Session, error) {
	s, ok := interceptors.GetGuest(ctx)
	if !ok || s.EventID == "" || s.Phone == "" {
		return security.Session{}, status.Error(codes.Unauthenticated, "unauthorized")
	}
	return s, nil
}
