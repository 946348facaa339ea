package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/omerA/v0-guest-event-app/internal/verification/domain"
)

func record(id, phone, event string, created time.Time) *domain.Record {
	return &domain.Record{
		ID:        id,
		Phone:     phone,
		EventID:   event,
		CodeHash:  "hash-" + id,
		ExpiresAt: created.Add(domain.DefaultTTL),
		CreatedAt: created,
	}
}

func TestMemoryRepository_ReplaceInvalidatesPrior(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := repo.Replace(ctx, record("r1", "15551234567", "gala", now)); err != nil {
		t.Fatalf("Replace r1: %v", err)
	}
	if err := repo.Replace(ctx, record("r2", "15551234567", "gala", now.Add(time.Second))); err != nil {
		t.Fatalf("Replace r2: %v", err)
	}

	got, err := repo.LatestActive(ctx, "15551234567", "gala", now.Add(2*time.Second))
	if err != nil {
		t.Fatalf("LatestActive: %v", err)
	}
	if got == nil || got.ID != "r2" {
		t.Fatalf("LatestActive = %+v, want r2", got)
	}
	if ok, _ := repo.MarkUsed(ctx, "r1"); ok {
		t.Error("r1 should already be used after reissue")
	}
}

func TestMemoryRepository_ReplaceLeavesOtherPairs(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	_ = repo.Replace(ctx, record("a", "15551234567", "gala", now))
	_ = repo.Replace(ctx, record("b", "15551234567", "picnic", now))
	_ = repo.Replace(ctx, record("c", "15550000000", "gala", now))

	for _, tc := range []struct{ phone, event, id string }{
		{"15551234567", "gala", "a"},
		{"15551234567", "picnic", "b"},
		{"15550000000", "gala", "c"},
	} {
		got, _ := repo.LatestActive(ctx, tc.phone, tc.event, now)
		if got == nil || got.ID != tc.id {
			t.Errorf("LatestActive(%s,%s) = %+v, want %s", tc.phone, tc.event, got, tc.id)
		}
	}
}

func TestMemoryRepository_LatestActiveSkipsExpired(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now().UTC()
	_ = repo.Replace(ctx, record("r1", "15551234567", "gala", now))

	got, err := repo.LatestActive(ctx, "15551234567", "gala", now.Add(domain.DefaultTTL+time.Second))
	if err != nil {
		t.Fatalf("LatestActive: %v", err)
	}
	if got != nil {
		t.Errorf("expired record returned: %+v", got)
	}
}

func TestMemoryRepository_ReplaceRequiresID(t *testing.T) {
	repo := NewMemoryRepository()
	if err := repo.Replace(context.Background(), &domain.Record{Phone: "1", EventID: "e"}); err == nil {
		t.Fatal("Replace without ID should fail")
	}
}

func TestMemoryRepository_MarkUsedOnce(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	_ = repo.Replace(ctx, record("r1", "15551234567", "gala", time.Now().UTC()))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := repo.MarkUsed(ctx, "r1"); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("MarkUsed succeeded %d times, want 1", wins)
	}
	if ok, _ := repo.MarkUsed(ctx, "missing"); ok {
		t.Error("MarkUsed on unknown id should return false")
	}
}

func TestMemoryRepository_DeleteStale(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	old := time.Now().UTC().Add(-48 * time.Hour)
	fresh := time.Now().UTC()

	_ = repo.Replace(ctx, record("old-expired", "15551234567", "gala", old))
	_ = repo.Replace(ctx, record("fresh", "15550000000", "gala", fresh))

	n, err := repo.DeleteStale(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteStale: %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteStale removed %d, want 1", n)
	}
	if got, _ := repo.LatestActive(ctx, "15550000000", "gala", fresh); got == nil {
		t.Error("fresh record should survive purge")
	}
}
