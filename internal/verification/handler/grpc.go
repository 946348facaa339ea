// Package handler implements the gRPC VerificationService: sending codes and exchanging a valid
// code for a guest session token.
package handler

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/omerA/v0-guest-event-app/internal/rpc"
	"github.com/omerA/v0-guest-event-app/internal/security"
	"github.com/omerA/v0-guest-event-app/internal/verification/service"
	"github.com/omerA/v0-guest-event-app/internal/verification/sms"
)

const codeSentMessage = "Verification code sent"

// CodeService issues and verifies codes.
type CodeService interface {
	IssueCode(ctx context.Context, rawPhone, eventID string) error
	VerifyCode(ctx context.Context, rawPhone, eventID, code string) (bool, error)
	PhoneForSession(rawPhone string) (string, error)
}

// ResponseChecker reports whether a verified guest already answered.
type ResponseChecker interface {
	HasResponded(ctx context.Context, eventID, phone string) (bool, error)
}

// Server implements rpc.VerificationServer.
type Server struct {
	verifier  CodeService
	sessions  *security.SessionCodec
	responses ResponseChecker
}

// NewServer returns a VerificationService server. sessions may be nil when SESSION_SECRET is unset;
// VerifyCode then fails with Unavailable. responses may be nil.
func NewServer(verifier CodeService, sessions *security.SessionCodec, responses ResponseChecker) *Server {
	return &Server{verifier: verifier, sessions: sessions, responses: responses}
}

// SendCode issues a code for (phone, event_id) and dispatches it by SMS.
func (s *Server) SendCode(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.verifier == nil {
		return nil, status.Error(codes.Unimplemented, "verification is not configured")
	}
	phone := rpc.String(req, "phone")
	eventID := rpc.String(req, "event_id")
	if err := s.verifier.IssueCode(ctx, phone, eventID); err != nil {
		return nil, codeError(err)
	}
	return rpc.Reply(map[string]any{
		"success": true,
		"message": codeSentMessage,
	})
}

// VerifyCode checks the code and, on success, returns a session token for (event_id, phone).
func (s *Server) VerifyCode(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rawPhone := rpc.String(req, "phone")
	eventID := rpc.String(req, "event_id")
	code := rpc.String(req, "code")
	if s.verifier == nil {
		return nil, status.Error(codes.Unimplemented, "verification is not configured")
	}
	if s.sessions == nil {
		return nil, status.Error(codes.Unavailable, "session secret is not configured")
	}

	ok, err := s.verifier.VerifyCode(ctx, rawPhone, eventID, code)
	if err != nil {
		return nil, codeError(err)
	}
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "invalid or expired code")
	}

	phone, err := s.verifier.PhoneForSession(rawPhone)
	if err != nil {
		return nil, codeError(err)
	}
	token, err := s.sessions.Encode(eventID, phone)
	if err != nil {
		if errors.Is(err, security.ErrSecretMissing) {
			return nil, status.Error(codes.Unavailable, "session secret is not configured")
		}
		return nil, status.Error(codes.Internal, "failed to issue session")
	}

	responded := false
	if s.responses != nil {
		responded, err = s.responses.HasResponded(ctx, eventID, phone)
		if err != nil {
			log.Printf("verification: response lookup failed: %v", err)
			return nil, status.Error(codes.Internal, "failed to load response")
		}
	}
	return rpc.Reply(map[string]any{
		"success":           true,
		"session_token":     token,
		"already_responded": responded,
	})
}

// codeError maps service errors to gRPC status errors.
func codeError(err error) error {
	var dispatchErr *service.DispatchError
	switch {
	case errors.Is(err, service.ErrInvalidPhone):
		return status.Error(codes.InvalidArgument, "invalid phone number")
	case errors.Is(err, service.ErrEventRequired):
		return status.Error(codes.InvalidArgument, "event_id is required")
	case errors.Is(err, service.ErrCodeRequired):
		return status.Error(codes.InvalidArgument, "code is required")
	case errors.Is(err, service.ErrUnknownEvent):
		return status.Error(codes.InvalidArgument, "unknown event")
	case errors.Is(err, service.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, "too many code requests, try again later")
	case errors.Is(err, sms.ErrNotConfigured):
		return status.Error(codes.Unavailable, "SMS is not configured")
	case errors.As(err, &dispatchErr):
		return status.Error(codes.Unavailable, "failed to send verification code")
	default:
		log.Printf("verification: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
}
