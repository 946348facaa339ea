package repository

import (
	"context"
	"testing"
	"time"

	"github.com/omerA/v0-guest-event-app/internal/audit/domain"
)

func TestMemoryRepository_ListByEvent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, ev := range []string{"gala", "gala", "other", "gala"} {
		_ = repo.Create(ctx, &domain.AuditLog{ID: string(rune('a' + i)), EventID: ev, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	all, err := repo.ListByEvent(ctx, "gala", 0, 0)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].ID != "d" || all[2].ID != "a" {
		t.Errorf("order = %s,%s,%s, want newest first", all[0].ID, all[1].ID, all[2].ID)
	}

	page, _ := repo.ListByEvent(ctx, "gala", 1, 1)
	if len(page) != 1 || page[0].ID != "b" {
		t.Errorf("page = %v, want [b]", page)
	}
	if out, _ := repo.ListByEvent(ctx, "gala", 10, 5); out != nil {
		t.Errorf("offset past end = %v, want nil", out)
	}
}
