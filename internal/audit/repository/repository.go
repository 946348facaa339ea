package repository

import (
	"context"

	"github.com/omerA/v0-guest-event-app/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	ListByEvent(ctx context.Context, eventID string, limit, offset int32) ([]*domain.AuditLog, error)
}
