// Package handler implements the dev-only gRPC DevService (GetCode).
package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/omerA/v0-guest-event-app/internal/devotp"
	"github.com/omerA/v0-guest-event-app/internal/rpc"
	"github.com/omerA/v0-guest-event-app/internal/verification"
)

const devOTPNote = "DEV MODE ONLY"

// Server implements rpc.DevServer. Only registered when dev OTP is enabled and not production.
type Server struct {
	store devotp.Store
}

// NewServer returns a DevService server that reads codes from the given store.
func NewServer(store devotp.Store) *Server {
	return &Server{store: store}
}

// GetCode returns the plaintext code last issued for (phone, event_id). Returns NotFound if missing or expired.
func (s *Server) GetCode(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	eventID := rpc.String(req, "event_id")
	if eventID == "" {
		return nil, status.Error(codes.InvalidArgument, "event_id is required")
	}
	phone, err := verification.NormalizePhone(rpc.String(req, "phone"))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid phone number")
	}
	code, ok := s.store.Get(ctx, eventID, phone)
	if !ok {
		return nil, status.Error(codes.NotFound, "OTP not found or expired")
	}
	return rpc.Reply(map[string]any{
		"code": code,
		"note": devOTPNote,
	})
}
