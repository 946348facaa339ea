// Package devotp provides an in-memory store of plaintext codes keyed by (event, phone),
// used only when dev OTP mode is enabled (DevService.GetCode).
package devotp

import (
	"context"
	"sync"
	"time"
)

// Store holds plaintext codes for dev-only retrieval. Not used in production.
type Store interface {
	// Put stores code for (eventID, phone) until expiresAt, replacing any earlier code for the pair.
	Put(ctx context.Context, eventID, phone, code string, expiresAt time.Time)
	// Get returns the code for (eventID, phone) if present and not expired. Returns ok false if missing or expired.
	Get(ctx context.Context, eventID, phone string) (code string, ok bool)
}

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory dev code store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

func key(eventID, phone string) string {
	return eventID + "\x00" + phone
}

// Put stores code for the pair until expiresAt.
func (s *MemoryStore) Put(ctx context.Context, eventID, phone, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key(eventID, phone)] = entry{code: code, expiresAt: expiresAt}
}

// Get returns the code for the pair if present and not expired.
func (s *MemoryStore) Get(ctx context.Context, eventID, phone string) (string, bool) {
	k := key(eventID, phone)
	s.mu.RLock()
	e, ok := s.m[k]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expiresAt.After(s.nowF()) {
		s.mu.Lock()
		delete(s.m, k)
		s.mu.Unlock()
		return "", false
	}
	return e.code, true
}
