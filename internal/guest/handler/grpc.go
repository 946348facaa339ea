// Package handler implements the gRPC ResponseService. The (event, phone) pair always comes from
// the authenticated session, never from the request.
package handler

import (
	"context"
	"errors"
	"log"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/omerA/v0-guest-event-app/internal/guest/domain"
	"github.com/omerA/v0-guest-event-app/internal/guest/service"
	"github.com/omerA/v0-guest-event-app/internal/platform/rbac"
	"github.com/omerA/v0-guest-event-app/internal/rpc"
)

// ResponseGate reads and writes one guest's response.
type ResponseGate interface {
	SubmitResponse(ctx context.Context, eventID, phone string, answers map[string]any) (*domain.Guest, error)
	FetchResponse(ctx context.Context, eventID, phone string) (*domain.Guest, error)
}

// Server implements rpc.ResponseServer.
type Server struct {
	gate ResponseGate
}

// NewServer returns a ResponseService server backed by gate. If gate is nil, both RPCs return Unimplemented.
func NewServer(gate ResponseGate) *Server {
	return &Server{gate: gate}
}

// SubmitResponse stores the "responses" object for the session's guest, replacing earlier answers.
func (s *Server) SubmitResponse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := rbac.RequireGuest(ctx)
	if err != nil {
		return nil, err
	}
	if s.gate == nil {
		return nil, status.Error(codes.Unimplemented, "responses are not configured")
	}
	answers, ok := rpc.Object(req, "responses")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "responses must be an object")
	}
	g, err := s.gate.SubmitResponse(ctx, sess.EventID, sess.Phone, answers)
	if err != nil {
		return nil, gateError(err)
	}
	return rpc.Reply(map[string]any{
		"success": true,
		"guest":   ToFields(g),
	})
}

// GetResponse returns the session guest's stored response; "guest" is null when nothing was submitted.
func (s *Server) GetResponse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := rbac.RequireGuest(ctx)
	if err != nil {
		return nil, err
	}
	if s.gate == nil {
		return nil, status.Error(codes.Unimplemented, "responses are not configured")
	}
	g, err := s.gate.FetchResponse(ctx, sess.EventID, sess.Phone)
	if err != nil {
		return nil, gateError(err)
	}
	var guest any
	if g != nil {
		guest = ToFields(g)
	}
	return rpc.Reply(map[string]any{"guest": guest})
}

// ToFields converts g to a structpb-compatible map. SubmittedAt is RFC3339 in UTC.
func ToFields(g *domain.Guest) map[string]any {
	if g == nil {
		return nil
	}
	responses := g.Responses
	if responses == nil {
		responses = map[string]any{}
	}
	return map[string]any{
		"id":           g.ID,
		"event_id":     g.EventID,
		"phone":        g.Phone,
		"name":         g.Name,
		"responses":    responses,
		"submitted_at": g.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

func gateError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidAnswers):
		return status.Error(codes.InvalidArgument, "responses must be an object")
	case errors.Is(err, service.ErrEventRequired), errors.Is(err, service.ErrPhoneRequired):
		return status.Error(codes.Unauthenticated, "unauthorized")
	default:
		log.Printf("guest: %v", err)
		return status.Error(codes.Internal, "failed to access response")
	}
}
