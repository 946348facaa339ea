package repository

import (
	"context"
	"time"

	"github.com/omerA/v0-guest-event-app/internal/verification/domain"
)

// Repository defines persistence for one-time code records.
type Repository interface {
	// Replace marks every unused record for (r.Phone, r.EventID) as used and stores r,
	// as one atomic step. r must have ID set.
	Replace(ctx context.Context, r *domain.Record) error
	// LatestActive returns the most recently created unused record for (phone, eventID)
	// that has not expired at now, or nil if there is none.
	LatestActive(ctx context.Context, phone, eventID string, now time.Time) (*domain.Record, error)
	// MarkUsed consumes the record. Returns false if it was already used.
	MarkUsed(ctx context.Context, id string) (bool, error)
	// DeleteStale removes records that are used or expired and were created before cutoff.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}
