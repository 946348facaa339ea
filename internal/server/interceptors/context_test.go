package interceptors

import (
	"context"
	"testing"

	"github.com/omerA/v0-guest-event-app/internal/security"
)

func TestWithGuest_RoundTrip(t *testing.T) {
	ctx := WithGuest(context.Background(), security.Session{EventID: "gala", Phone: "15551234567"})
	s, ok := GetGuest(ctx)
	if !ok {
		t.Fatal("GetGuest should return true")
	}
	if s.EventID != "gala" || s.Phone != "15551234567" {
		t.Errorf("session = %+v", s)
	}
	if IsAdmin(ctx) {
		t.Error("guest context should not be admin")
	}
}

func TestGetGuest_ReturnsFalseWhenNotSet(t *testing.T) {
	if _, ok := GetGuest(context.Background()); ok {
		t.Error("GetGuest should return false when not set")
	}
}

func TestWithAdmin(t *testing.T) {
	if IsAdmin(context.Background()) {
		t.Error("IsAdmin should be false by default")
	}
	ctx := WithAdmin(context.Background())
	if !IsAdmin(ctx) {
		t.Error("IsAdmin should be true after WithAdmin")
	}
	if _, ok := GetGuest(ctx); ok {
		t.Error("admin context should not carry a guest session")
	}
}
