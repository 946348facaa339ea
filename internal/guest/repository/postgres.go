package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/omerA/v0-guest-event-app/internal/guest/domain"
)

// PostgresRepository stores guests in the guests table. The unique (event_id, phone)
// constraint serializes concurrent submissions.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a guest repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const guestColumns = `id, event_id, phone, name, responses, submitted_at`

// Upsert inserts or overwrites the guest keyed by (event_id, phone).
func (r *PostgresRepository) Upsert(ctx context.Context, g *domain.Guest) (*domain.Guest, error) {
	responses, err := json.Marshal(g.Responses)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO guests (id, event_id, phone, name, responses, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, phone) DO UPDATE
		SET name = EXCLUDED.name, responses = EXCLUDED.responses, submitted_at = EXCLUDED.submitted_at
		RETURNING `+guestColumns,
		g.ID, g.EventID, g.Phone, g.Name, responses, g.SubmittedAt,
	)
	return scanGuest(row)
}

// Get returns the guest for (eventID, phone), or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) Get(ctx context.Context, eventID, phone string) (*domain.Guest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE event_id = $1 AND phone = $2`, eventID, phone)
	g, err := scanGuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

// Exists reports whether (eventID, phone) has a stored response.
func (r *PostgresRepository) Exists(ctx context.Context, eventID, phone string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM guests WHERE event_id = $1 AND phone = $2)`, eventID, phone,
	).Scan(&exists)
	return exists, err
}

// ListByEvent returns the event's guests, newest submission first.
func (r *PostgresRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Guest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE event_id = $1 ORDER BY submitted_at DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(s rowScanner) (*domain.Guest, error) {
	var (
		g         domain.Guest
		responses []byte
	)
	if err := s.Scan(&g.ID, &g.EventID, &g.Phone, &g.Name, &responses, &g.SubmittedAt); err != nil {
		return nil, err
	}
	if len(responses) > 0 {
		if err := json.Unmarshal(responses, &g.Responses); err != nil {
			return nil, err
		}
	}
	if g.Responses == nil {
		g.Responses = map[string]any{}
	}
	return &g, nil
}
