package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/omerA/v0-guest-event-app/internal/verification/domain"
)

// PostgresRepository stores code records in the otp_records table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a code repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Replace runs the invalidate and the insert in one transaction. A transaction-scoped advisory lock on
// the (phone, event) pair serializes concurrent issues, so a second issue always invalidates the first.
func (r *PostgresRepository) Replace(ctx context.Context, rec *domain.Record) (err error) {
	if rec == nil || rec.ID == "" {
		return errors.New("otp record id is required")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text || ':' || $2::text))`, rec.Phone, rec.EventID); err != nil {
		return fmt.Errorf("lock otp pair: %w", err)
	}

	const invalidate = `
		UPDATE otp_records
		SET used = TRUE
		WHERE phone = $1 AND event_id = $2 AND used = FALSE
	`
	if _, err = tx.ExecContext(ctx, invalidate, rec.Phone, rec.EventID); err != nil {
		return fmt.Errorf("invalidate otp records: %w", err)
	}

	const insert = `
		INSERT INTO otp_records (id, phone, event_id, code_hash, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err = tx.ExecContext(ctx, insert,
		rec.ID, rec.Phone, rec.EventID, rec.CodeHash, rec.ExpiresAt, rec.Used, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert otp record: %w", err)
	}
	return tx.Commit()
}

// LatestActive returns the newest unused, unexpired record for the pair, or nil.
func (r *PostgresRepository) LatestActive(ctx context.Context, phone, eventID string, now time.Time) (*domain.Record, error) {
	const query = `
		SELECT id, phone, event_id, code_hash, expires_at, used, created_at
		FROM otp_records
		WHERE phone = $1 AND event_id = $2 AND used = FALSE AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	var rec domain.Record
	err := r.db.QueryRowContext(ctx, query, phone, eventID, now).Scan(
		&rec.ID, &rec.Phone, &rec.EventID, &rec.CodeHash, &rec.ExpiresAt, &rec.Used, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// MarkUsed flips used only while it is still false, so concurrent verifies consume a code once.
func (r *PostgresRepository) MarkUsed(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE otp_records SET used = TRUE WHERE id = $1 AND used = FALSE`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteStale removes used or expired records created before cutoff.
func (r *PostgresRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
		DELETE FROM otp_records
		WHERE created_at < $1 AND (used = TRUE OR expires_at <= $1)
	`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
