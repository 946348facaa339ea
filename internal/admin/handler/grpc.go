// Package handler implements the gRPC AdminService: password login for the shared admin token and
// the per-event guest listing.
package handler

import (
	"context"
	"errors"
	"log"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/omerA/v0-guest-event-app/internal/audit"
	guestdomain "github.com/omerA/v0-guest-event-app/internal/guest/domain"
	guesthandler "github.com/omerA/v0-guest-event-app/internal/guest/handler"
	"github.com/omerA/v0-guest-event-app/internal/platform/rbac"
	"github.com/omerA/v0-guest-event-app/internal/rpc"
	"github.com/omerA/v0-guest-event-app/internal/security"
	"github.com/omerA/v0-guest-event-app/internal/telemetry"
)

// PasswordChecker validates the admin password.
type PasswordChecker interface {
	CheckPassword(candidate string) error
}

// GuestLister lists an event's guests, newest first.
type GuestLister interface {
	ListGuests(ctx context.Context, eventID string) ([]*guestdomain.Guest, error)
}

// Server implements rpc.AdminServer.
type Server struct {
	passwords PasswordChecker
	tokens    *security.AdminCodec
	guests    GuestLister
	tokenTTL  time.Duration
	audit     audit.AuditLogger
	telemetry telemetry.EventEmitter
}

// NewServer returns an AdminService server. tokens may be nil when SESSION_SECRET is unset; Login then
// fails with Unavailable. auditLogger and emitter may be nil.
func NewServer(passwords PasswordChecker, tokens *security.AdminCodec, guests GuestLister, tokenTTL time.Duration, auditLogger audit.AuditLogger, emitter telemetry.EventEmitter) *Server {
	return &Server{
		passwords: passwords,
		tokens:    tokens,
		guests:    guests,
		tokenTTL:  tokenTTL,
		audit:     auditLogger,
		telemetry: emitter,
	}
}

// Login checks the admin password and returns the admin token with its advertised max age.
func (s *Server) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	password := rpc.RawString(req, "password")
	if password == "" {
		return nil, status.Error(codes.InvalidArgument, "password is required")
	}
	if s.tokens == nil {
		return nil, status.Error(codes.Unavailable, "session secret is not configured")
	}
	if s.passwords == nil {
		return nil, status.Error(codes.Unavailable, "admin password is not configured")
	}
	if err := s.passwords.CheckPassword(password); err != nil {
		if errors.Is(err, security.ErrAdminNotConfigured) {
			return nil, status.Error(codes.Unavailable, "admin password is not configured")
		}
		s.logAudit(ctx, audit.ActionAdminLoginFailed)
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	token, err := s.tokens.Issue()
	if err != nil {
		log.Printf("admin: issue token: %v", err)
		return nil, status.Error(codes.Unavailable, "session secret is not configured")
	}
	s.logAudit(ctx, audit.ActionAdminLogin)
	telemetry.EmitAsync(s.telemetry, ctx, telemetry.NewEvent("", audit.SubjectAdmin, telemetry.EventAdminLogin, "admin"))
	return rpc.Reply(map[string]any{
		"success":         true,
		"admin_token":     token,
		"max_age_seconds": int64(s.tokenTTL / time.Second),
	})
}

// Logout tells the client to drop its admin token. The token itself stays valid until SESSION_SECRET rotates.
func (s *Server) Logout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return rpc.Reply(map[string]any{
		"success":         true,
		"admin_token":     "",
		"max_age_seconds": 0,
	})
}

// ListGuests returns every guest of event_id, newest submission first.
func (s *Server) ListGuests(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := rbac.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	eventID := rpc.String(req, "event_id")
	if eventID == "" {
		return nil, status.Error(codes.InvalidArgument, "event_id is required")
	}
	if s.guests == nil {
		return nil, status.Error(codes.Unimplemented, "guest listing is not configured")
	}
	list, err := s.guests.ListGuests(ctx, eventID)
	if err != nil {
		log.Printf("admin: list guests for %s: %v", eventID, err)
		return nil, status.Error(codes.Internal, "failed to list guests")
	}
	guests := make([]any, 0, len(list))
	for _, g := range list {
		guests = append(guests, guesthandler.ToFields(g))
	}
	return rpc.Reply(map[string]any{"guests": guests})
}

func (s *Server) logAudit(ctx context.Context, action string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, "", audit.SubjectAdmin, action, "admin", "")
	}
}
