package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is a per-process token bucket per key: limit tokens refilled evenly over window.
// Used when no Redis is configured; counts are not shared between instances.
type LocalLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*localEntry
	nowF    func() time.Time
}

// NewLocalLimiter returns an in-process limiter allowing a burst of limit requests per window per key.
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*localEntry),
		nowF:    time.Now,
	}
}

// Allow takes one token from key's bucket.
func (l *LocalLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.limit <= 0 || l.window <= 0 || key == "" {
		return true
	}
	now := l.nowF()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evict(now)
	e, ok := l.buckets[key]
	if !ok {
		every := l.window / time.Duration(l.limit)
		e = &localEntry{limiter: rate.NewLimiter(rate.Every(every), l.limit)}
		l.buckets[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// evict drops buckets idle for longer than a full window; they would be full again anyway.
func (l *LocalLimiter) evict(now time.Time) {
	for k, e := range l.buckets {
		if now.Sub(e.lastSeen) > l.window {
			delete(l.buckets, k)
		}
	}
}
