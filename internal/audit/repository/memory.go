package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/omerA/v0-guest-event-app/internal/audit/domain"
)

// MemoryRepository keeps audit logs in memory.
type MemoryRepository struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

// NewMemoryRepository returns an empty in-memory audit repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Create appends a copy of a.
func (m *MemoryRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.logs = append(m.logs, &cp)
	return nil
}

// ListByEvent returns logs for the event, newest first.
func (m *MemoryRepository) ListByEvent(ctx context.Context, eventID string, limit, offset int32) ([]*domain.AuditLog, error) {
	m.mu.Lock()
	var matched []*domain.AuditLog
	for _, a := range m.logs {
		if a.EventID == eventID {
			cp := *a
			matched = append(matched, &cp)
		}
	}
	m.mu.Unlock()
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if offset < 0 {
		offset = 0
	}
	if int(offset) >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && int(limit) < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}
