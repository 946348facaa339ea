package interceptors

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/omerA/v0-guest-event-app/internal/policy/engine"
	"github.com/omerA/v0-guest-event-app/internal/security"
)

const bearerPrefix = "bearer "

// MethodAccess maps full method names to the access level they require (engine.Access*).
type MethodAccess map[string]string

// Required returns the access level for fullMethod. Unlisted methods require a guest session.
func (m MethodAccess) Required(fullMethod string) string {
	if level, ok := m[fullMethod]; ok {
		return level
	}
	return engine.AccessGuest
}

// AuthUnary returns a unary server interceptor that validates the Bearer token from gRPC metadata.
// Guest methods need a session token, which is decoded into the context (see GetGuest).
// Admin methods need the admin token. Public methods pass through without a token.
// Every failure is answered with the same Unauthenticated status.
func AuthUnary(sessions *security.SessionCodec, admins *security.AdminCodec, access MethodAccess) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		switch access.Required(info.FullMethod) {
		case engine.AccessPublic:
			return handler(ctx, req)
		case engine.AccessAdmin:
			token := extractBearer(ctx)
			if token == "" || admins == nil || !admins.Verify(token) {
				return nil, status.Error(codes.Unauthenticated, "unauthorized")
			}
			return handler(WithAdmin(ctx), req)
		default:
			token := extractBearer(ctx)
			if token == "" || sessions == nil {
				return nil, status.Error(codes.Unauthenticated, "unauthorized")
			}
			s, err := sessions.Decode(token)
			if err != nil {
				return nil, status.Error(codes.Unauthenticated, "unauthorized")
			}
			return handler(WithGuest(ctx, s), req)
		}
	}
}

// extractBearer returns the Bearer token from ctx metadata, or "" if missing or malformed.
func extractBearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
