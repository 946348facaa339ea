package interceptors

import (
	"context"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/omerA/v0-guest-event-app/internal/policy/engine"
	"github.com/omerA/v0-guest-event-app/internal/rpc"
)

// AccessUnary returns a unary server interceptor that asks evaluator whether the authenticated
// principal may call the method. It must run after AuthUnary. A nil evaluator allows everything.
func AccessUnary(evaluator engine.Evaluator, access MethodAccess) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if evaluator == nil {
			return handler(ctx, req)
		}
		ar := engine.AccessRequest{
			Method:        info.FullMethod,
			Required:      access.Required(info.FullMethod),
			PrincipalKind: engine.PrincipalAnonymous,
		}
		if s, ok := GetGuest(ctx); ok {
			ar.PrincipalKind = engine.PrincipalGuest
			ar.PrincipalEventID = s.EventID
		} else if IsAdmin(ctx) {
			ar.PrincipalKind = engine.PrincipalAdmin
		}
		if in, ok := req.(*structpb.Struct); ok {
			ar.RequestEventID = rpc.String(in, "event_id")
		}
		allowed, err := evaluator.Allow(ctx, ar)
		if err != nil {
			log.Printf("policy: access evaluation for %s failed: %v", info.FullMethod, err)
			return nil, status.Error(codes.Unavailable, "access policy unavailable")
		}
		if !allowed {
			return nil, status.Error(codes.PermissionDenied, "permission denied")
		}
		return handler(ctx, req)
	}
}
