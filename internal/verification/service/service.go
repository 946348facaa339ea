// Package service issues and verifies one-time codes for (phone, event) pairs.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/omerA/v0-guest-event-app/internal/audit"
	"github.com/omerA/v0-guest-event-app/internal/devotp"
	"github.com/omerA/v0-guest-event-app/internal/ratelimit"
	"github.com/omerA/v0-guest-event-app/internal/telemetry"
	"github.com/omerA/v0-guest-event-app/internal/verification"
	"github.com/omerA/v0-guest-event-app/internal/verification/domain"
	"github.com/omerA/v0-guest-event-app/internal/verification/repository"
	"github.com/omerA/v0-guest-event-app/internal/verification/sms"
)

// Sentinel errors for the verification service; handlers map them to gRPC codes.
var (
	ErrInvalidPhone  = verification.ErrInvalidPhone
	ErrEventRequired = errors.New("event id is required")
	ErrCodeRequired  = errors.New("code is required")
	ErrUnknownEvent  = errors.New("unknown event")
	ErrRateLimited   = errors.New("too many code requests")
)

// DispatchError reports that the code was stored but the SMS provider did not accept it.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string { return "code dispatch failed: " + e.Err.Error() }

func (e *DispatchError) Unwrap() error { return e.Err }

// EventLookup is the minimal event repository needed by the service.
type EventLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Options holds optional collaborators and switches. Zero values disable each feature.
type Options struct {
	// TTL is the code lifetime; domain.DefaultTTL when zero.
	TTL time.Duration
	// DemoCodes derives codes from the phone number. Insecure.
	DemoCodes bool
	// DevStore, when set, enables dev mode: codes are kept for DevService and no SMS is sent.
	DevStore  devotp.Store
	Limiter   ratelimit.Limiter
	Audit     audit.AuditLogger
	Telemetry telemetry.EventEmitter
	Metrics   *telemetry.Metrics
}

// Service is the code generator and verifier.
type Service struct {
	repo   repository.Repository
	events EventLookup
	sender sms.Sender
	opts   Options
	nowF   func() time.Time
}

// NewService returns a Service. events may be nil to skip the event existence check; sender may be
// nil only in dev mode.
func NewService(repo repository.Repository, events EventLookup, sender sms.Sender, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = domain.DefaultTTL
	}
	return &Service{repo: repo, events: events, sender: sender, opts: opts, nowF: time.Now}
}

// DevMode reports whether codes are kept for DevService instead of being sent.
func (s *Service) DevMode() bool {
	return s.opts.DevStore != nil
}

func (s *Service) normalize(ctx context.Context, rawPhone, eventID string) (string, error) {
	phone, err := verification.NormalizePhone(rawPhone)
	if err != nil {
		return "", err
	}
	if eventID == "" {
		return "", ErrEventRequired
	}
	if s.events != nil {
		ok, err := s.events.Exists(ctx, eventID)
		if err != nil {
			return "", fmt.Errorf("lookup event: %w", err)
		}
		if !ok {
			return "", ErrUnknownEvent
		}
	}
	return phone, nil
}

func (s *Service) senderReady() bool {
	if s.sender == nil {
		return false
	}
	if c, ok := s.sender.(sms.Configurable); ok {
		return c.Configured()
	}
	return true
}

// IssueCode generates a code for (phone, eventID), invalidates earlier unused codes for the pair,
// stores the new digest and dispatches the plaintext code. When dispatch fails the record stays
// stored and a *DispatchError is returned.
func (s *Service) IssueCode(ctx context.Context, rawPhone, eventID string) error {
	phone, err := s.normalize(ctx, rawPhone, eventID)
	if err != nil {
		return err
	}
	if !s.DevMode() && !s.senderReady() {
		return sms.ErrNotConfigured
	}
	if s.opts.Limiter != nil && !s.opts.Limiter.Allow(ctx, "send:"+eventID+":"+phone) {
		return ErrRateLimited
	}

	var code string
	if s.opts.DemoCodes {
		code = verification.DemoCode(phone)
	} else if code, err = verification.GenerateCode(); err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	now := s.nowF().UTC()
	rec := &domain.Record{
		ID:        uuid.New().String(),
		Phone:     phone,
		EventID:   eventID,
		CodeHash:  verification.HashCode(eventID, phone, code),
		ExpiresAt: now.Add(s.opts.TTL),
		CreatedAt: now,
	}
	if err := s.repo.Replace(ctx, rec); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	masked := verification.MaskPhone(phone)
	if s.DevMode() {
		s.opts.DevStore.Put(ctx, eventID, phone, code, rec.ExpiresAt)
		log.Printf("verification: dev mode, code for %s kept for DevService", masked)
		s.record(ctx, eventID, masked, audit.ActionCodeSent, telemetry.EventCodeSent, "channel=dev")
		s.opts.Metrics.CodeIssued(ctx, "dev")
		return nil
	}

	if err := s.sender.SendCode(ctx, phone, code); err != nil {
		if errors.Is(err, sms.ErrNotConfigured) {
			return err
		}
		log.Printf("verification: dispatch to %s failed: %v", masked, err)
		s.record(ctx, eventID, masked, audit.ActionCodeDispatchFailed, "", "channel=sms")
		s.opts.Metrics.DispatchFailed(ctx)
		return &DispatchError{Err: err}
	}
	s.record(ctx, eventID, masked, audit.ActionCodeSent, telemetry.EventCodeSent, "channel=sms")
	s.opts.Metrics.CodeIssued(ctx, "sms")
	return nil
}

// VerifyCode reports whether code is the current code for (phone, eventID) and consumes it.
// Wrong, expired, missing and already used codes all return false with a nil error.
func (s *Service) VerifyCode(ctx context.Context, rawPhone, eventID, code string) (bool, error) {
	phone, err := s.normalize(ctx, rawPhone, eventID)
	if err != nil {
		return false, err
	}
	if code == "" {
		return false, ErrCodeRequired
	}
	masked := verification.MaskPhone(phone)

	rec, err := s.repo.LatestActive(ctx, phone, eventID, s.nowF().UTC())
	if err != nil {
		return false, fmt.Errorf("load code: %w", err)
	}
	if rec == nil || !verification.CodeEqual(eventID, phone, code, rec.CodeHash) {
		s.reject(ctx, eventID, masked)
		return false, nil
	}
	consumed, err := s.repo.MarkUsed(ctx, rec.ID)
	if err != nil {
		return false, fmt.Errorf("consume code: %w", err)
	}
	if !consumed {
		s.reject(ctx, eventID, masked)
		return false, nil
	}
	s.record(ctx, eventID, masked, audit.ActionCodeVerified, telemetry.EventCodeVerified, "")
	s.opts.Metrics.CodeVerified(ctx)
	return true, nil
}

// PhoneForSession normalizes rawPhone the same way IssueCode and VerifyCode do.
func (s *Service) PhoneForSession(rawPhone string) (string, error) {
	return verification.NormalizePhone(rawPhone)
}

func (s *Service) reject(ctx context.Context, eventID, masked string) {
	s.record(ctx, eventID, masked, audit.ActionCodeRejected, telemetry.EventCodeRejected, "")
	s.opts.Metrics.CodeRejected(ctx)
}

func (s *Service) record(ctx context.Context, eventID, masked, action, eventType, metadata string) {
	if s.opts.Audit != nil {
		s.opts.Audit.LogEvent(ctx, eventID, masked, action, "verification", metadata)
	}
	if eventType != "" {
		telemetry.EmitAsync(s.opts.Telemetry, ctx, telemetry.NewEvent(eventID, masked, eventType, "verification"))
	}
}
