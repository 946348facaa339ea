package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/omerA/v0-guest-event-app/internal/verification/domain"
)

// MemoryRepository is an in-memory Repository. It keeps the same guarantees as the
// Postgres implementation: Replace and MarkUsed are atomic under one mutex.
type MemoryRepository struct {
	mu      sync.Mutex
	records []*domain.Record
}

// NewMemoryRepository returns an empty in-memory code repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Replace invalidates unused records for the pair and appends r.
func (m *MemoryRepository) Replace(ctx context.Context, r *domain.Record) error {
	if r == nil || r.ID == "" {
		return errors.New("otp record id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.Phone == r.Phone && existing.EventID == r.EventID && !existing.Used {
			existing.Used = true
		}
	}
	cp := *r
	m.records = append(m.records, &cp)
	return nil
}

// LatestActive returns a copy of the newest active record for the pair, or nil.
func (m *MemoryRepository) LatestActive(ctx context.Context, phone, eventID string, now time.Time) (*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.Record
	for _, r := range m.records {
		if r.Phone != phone || r.EventID != eventID || !r.Active(now) {
			continue
		}
		if latest == nil || !r.CreatedAt.Before(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

// MarkUsed consumes the record with id if it is still unused.
func (m *MemoryRepository) MarkUsed(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			if r.Used {
				return false, nil
			}
			r.Used = true
			return true, nil
		}
	}
	return false, nil
}

// DeleteStale drops used or expired records created before cutoff.
func (m *MemoryRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	var n int64
	for _, r := range m.records {
		if r.CreatedAt.Before(cutoff) && (r.Used || !r.ExpiresAt.After(cutoff)) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return n, nil
}
