// Package telemetry carries best-effort auth and response events to Kafka and OTel logs.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Event types emitted by the verification, guest and admin flows.
const (
	EventCodeSent          = "code_sent"
	EventCodeVerified      = "code_verified"
	EventCodeRejected      = "code_rejected"
	EventResponseSubmitted = "response_submitted"
	EventAdminLogin        = "admin_login"
	EventGRPCRequest       = "grpc_request"
)

// Event is one telemetry record. Subject must already be masked; codes and tokens never appear here.
type Event struct {
	EventID   string          `json:"eventId"`
	Subject   string          `json:"subject,omitempty"`
	EventType string          `json:"eventType"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewEvent returns an Event stamped with the current UTC time.
func NewEvent(eventID, subject, eventType, source string) *Event {
	return &Event{
		EventID:   eventID,
		Subject:   subject,
		EventType: eventType,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// EventEmitter emits telemetry events (e.g. to OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

// Fanout sends each event to every non-nil emitter and joins their errors.
type Fanout []EventEmitter

// Emit implements EventEmitter.
func (f Fanout) Emit(ctx context.Context, event *Event) error {
	var errs []error
	for _, e := range f {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
