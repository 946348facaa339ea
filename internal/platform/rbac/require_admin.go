package rbac

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/omerA/v0-guest-event-app/internal/server/interceptors"
)

// RequireAdmin returns Unauthenticated unless ctx was authenticated with the admin token.
func RequireAdmin(ctx context.Context) error {
	if !interceptors.IsAdmin(ctx) {
		return status.Error(codes.Unauthenticated, "unauthorized")
	}
	return nil
}
