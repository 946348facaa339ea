package repository

import (
	"context"
	"sync"

	"github.com/omerA/v0-guest-event-app/internal/event/domain"
)

// MemoryRepository keeps events in memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	events map[string]domain.Event
}

// NewMemoryRepository returns a repository seeded with events.
func NewMemoryRepository(events ...*domain.Event) *MemoryRepository {
	m := &MemoryRepository{events: make(map[string]domain.Event, len(events))}
	for _, e := range events {
		m.events[e.ID] = *e
	}
	return m
}

// GetByID returns a copy of the event, or nil if not found.
func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// Exists reports whether an event with id exists.
func (m *MemoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.events[id]
	return ok, nil
}

// Create inserts or renames the event.
func (m *MemoryRepository) Create(ctx context.Context, e *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.events[e.ID]; ok {
		existing.Name = e.Name
		m.events[e.ID] = existing
		return nil
	}
	m.events[e.ID] = *e
	return nil
}
