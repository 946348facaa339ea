// Package service implements the guest response gate: reading and writing exactly one
// guest's responses for an already verified (event, phone) pair.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omerA/v0-guest-event-app/internal/audit"
	"github.com/omerA/v0-guest-event-app/internal/guest/domain"
	guestrepo "github.com/omerA/v0-guest-event-app/internal/guest/repository"
	"github.com/omerA/v0-guest-event-app/internal/telemetry"
	"github.com/omerA/v0-guest-event-app/internal/verification"
)

var (
	// ErrInvalidAnswers is returned when answers is nil.
	ErrInvalidAnswers = errors.New("answers must be an object")
	// ErrEventRequired is returned when the event ID is empty.
	ErrEventRequired = errors.New("event id is required")
	// ErrPhoneRequired is returned when the phone is empty.
	ErrPhoneRequired = errors.New("phone is required")
)

// Gate authorizes access to one guest's response. It trusts the (eventID, phone) it is given;
// token validation is the caller's job.
type Gate struct {
	repo      guestrepo.Repository
	audit     audit.AuditLogger
	telemetry telemetry.EventEmitter
	nowF      func() time.Time
}

// NewGate returns a Gate over repo. auditLogger and emitter may be nil.
func NewGate(repo guestrepo.Repository, auditLogger audit.AuditLogger, emitter telemetry.EventEmitter) *Gate {
	return &Gate{repo: repo, audit: auditLogger, telemetry: emitter, nowF: time.Now}
}

func validatePair(eventID, phone string) error {
	if eventID == "" {
		return ErrEventRequired
	}
	if phone == "" {
		return ErrPhoneRequired
	}
	return nil
}

// SubmitResponse stores answers for (eventID, phone), overwriting any earlier submission.
// The display name comes from the "q-name" answer.
func (g *Gate) SubmitResponse(ctx context.Context, eventID, phone string, answers map[string]any) (*domain.Guest, error) {
	if err := validatePair(eventID, phone); err != nil {
		return nil, err
	}
	if answers == nil {
		return nil, ErrInvalidAnswers
	}
	stored, err := g.repo.Upsert(ctx, &domain.Guest{
		ID:          uuid.New().String(),
		EventID:     eventID,
		Phone:       phone,
		Name:        domain.NameFromAnswers(answers),
		Responses:   answers,
		SubmittedAt: g.nowF().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("store response: %w", err)
	}
	masked := verification.MaskPhone(phone)
	if g.audit != nil {
		g.audit.LogEvent(ctx, eventID, masked, audit.ActionResponseSubmitted, "response", fmt.Sprintf("answers=%d", len(answers)))
	}
	ev := telemetry.NewEvent(eventID, masked, telemetry.EventResponseSubmitted, "guest")
	ev.Metadata, _ = json.Marshal(map[string]int{"answers": len(answers)})
	telemetry.EmitAsync(g.telemetry, ctx, ev)
	return stored, nil
}

// FetchResponse returns the guest for (eventID, phone), or nil when none was submitted.
func (g *Gate) FetchResponse(ctx context.Context, eventID, phone string) (*domain.Guest, error) {
	if err := validatePair(eventID, phone); err != nil {
		return nil, err
	}
	return g.repo.Get(ctx, eventID, phone)
}

// HasResponded reports whether (eventID, phone) has a stored response.
func (g *Gate) HasResponded(ctx context.Context, eventID, phone string) (bool, error) {
	if err := validatePair(eventID, phone); err != nil {
		return false, err
	}
	return g.repo.Exists(ctx, eventID, phone)
}

// ListGuests returns every guest of the event, newest submission first. Admin-only; the caller authorizes.
func (g *Gate) ListGuests(ctx context.Context, eventID string) ([]*domain.Guest, error) {
	if eventID == "" {
		return nil, ErrEventRequired
	}
	return g.repo.ListByEvent(ctx, eventID)
}
