package repository

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/omerA/v0-guest-event-app/internal/guest/domain"
)

// MemoryRepository keeps guests in memory keyed by (event, phone).
type MemoryRepository struct {
	mu     sync.RWMutex
	guests map[guestKey]domain.Guest
}

type guestKey struct {
	eventID string
	phone   string
}

// NewMemoryRepository returns an empty in-memory guest repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{guests: make(map[guestKey]domain.Guest)}
}

// Upsert inserts g or overwrites the existing guest's name, responses and submission time.
func (m *MemoryRepository) Upsert(ctx context.Context, g *domain.Guest) (*domain.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := guestKey{g.EventID, g.Phone}
	stored := cloneGuest(*g)
	if existing, ok := m.guests[k]; ok {
		stored.ID = existing.ID
	}
	m.guests[k] = stored
	out := cloneGuest(stored)
	return &out, nil
}

// Get returns a copy of the guest, or nil if not found.
func (m *MemoryRepository) Get(ctx context.Context, eventID, phone string) (*domain.Guest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.guests[guestKey{eventID, phone}]
	if !ok {
		return nil, nil
	}
	out := cloneGuest(g)
	return &out, nil
}

// Exists reports whether (eventID, phone) has responded.
func (m *MemoryRepository) Exists(ctx context.Context, eventID, phone string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.guests[guestKey{eventID, phone}]
	return ok, nil
}

// ListByEvent returns copies of the event's guests, newest submission first.
func (m *MemoryRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Guest, error) {
	m.mu.RLock()
	var out []*domain.Guest
	for k, g := range m.guests {
		if k.eventID == eventID {
			c := cloneGuest(g)
			out = append(out, &c)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func cloneGuest(g domain.Guest) domain.Guest {
	g.Responses = maps.Clone(g.Responses)
	return g
}
