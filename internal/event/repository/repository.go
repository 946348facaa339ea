package repository

import (
	"context"

	"github.com/omerA/v0-guest-event-app/internal/event/domain"
)

// Repository defines persistence for events.
type Repository interface {
	// GetByID returns the event for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// Exists reports whether an event with id exists.
	Exists(ctx context.Context, id string) (bool, error)
	// Create persists the event, or updates its name when it already exists.
	Create(ctx context.Context, e *domain.Event) error
}
