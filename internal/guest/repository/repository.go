package repository

import (
	"context"

	"github.com/omerA/v0-guest-event-app/internal/guest/domain"
)

// Repository defines persistence for guest responses.
type Repository interface {
	// Upsert inserts g, or overwrites name, responses and submission time of the existing
	// guest with the same (EventID, Phone). Returns the stored guest; its ID is the existing
	// one on update.
	Upsert(ctx context.Context, g *domain.Guest) (*domain.Guest, error)
	// Get returns the guest for (eventID, phone), or nil if not found.
	Get(ctx context.Context, eventID, phone string) (*domain.Guest, error)
	// Exists reports whether (eventID, phone) has responded.
	Exists(ctx context.Context, eventID, phone string) (bool, error)
	// ListByEvent returns the event's guests, newest submission first.
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Guest, error)
}
