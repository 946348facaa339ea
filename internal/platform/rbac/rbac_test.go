package rbac

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/omerA/v0-guest-event-app/internal/security"
	"github.com/omerA/v0-guest-event-app/internal/server/interceptors"
)

func TestRequireGuest(t *testing.T) {
	testCases := []struct {
		name    string
		ctx     context.Context
		wantErr bool
	}{
		{"no session", context.Background(), true},
		{"admin only", interceptors.WithAdmin(context.Background()), true},
		{"empty phone", interceptors.WithGuest(context.Background(), security.Session{EventID: "gala"}), true},
		{"valid", interceptors.WithGuest(context.Background(), security.Session{EventID: "gala", Phone: "15551234567"}), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := RequireGuest(tc.ctx)
			if tc.wantErr {
				if status.Code(err) != codes.Unauthenticated {
					t.Fatalf("code = %v, want Unauthenticated", status.Code(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("RequireGuest: %v", err)
			}
			if s.EventID != "gala" || s.Phone != "15551234567" {
				t.Errorf("session = %+v", s)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(context.Background()); status.Code(err) != codes.Unauthenticated {
		t.Errorf("code = %v, want Unauthenticated", status.Code(err))
	}
	guest := interceptors.WithGuest(context.Background(), security.Session{EventID: "gala", Phone: "15551234567"})
	if err := RequireAdmin(guest); status.Code(err) != codes.Unauthenticated {
		t.Errorf("guest: code = %v, want Unauthenticated", status.Code(err))
	}
	if err := RequireAdmin(interceptors.WithAdmin(context.Background())); err != nil {
		t.Errorf("admin: %v", err)
	}
}
