package interceptors

import (
	"context"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/omerA/v0-guest-event-app/internal/audit"
	"github.com/omerA/v0-guest-event-app/internal/rpc"
	"github.com/omerA/v0-guest-event-app/internal/verification"
)

const subjectAnonymous = "anonymous"

// AuditUnary returns a unary server interceptor that records an audit log entry after each RPC.
// skipMethods is the set of full method names to not audit (e.g. health checks). Methods whose
// handlers audit themselves (audit.SelfAudited) are skipped too.
// LogEvent is best-effort, so a failed write never fails the RPC.
func AuditUnary(logger audit.AuditLogger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if logger == nil || skipMethods[info.FullMethod] || audit.SelfAudited(info.FullMethod) {
			return resp, err
		}
		eventID, subject := auditSubject(ctx, req)
		ar := audit.ParseFullMethod(info.FullMethod)
		logger.LogEvent(ctx, eventID, subject, ar.Action, ar.Resource, "status="+status.Code(err).String())
		return resp, err
	}
}

func auditSubject(ctx context.Context, req interface{}) (eventID, subject string) {
	if s, ok := GetGuest(ctx); ok {
		return s.EventID, verification.MaskPhone(s.Phone)
	}
	if in, ok := req.(*structpb.Struct); ok {
		eventID = rpc.String(in, "event_id")
	}
	if IsAdmin(ctx) {
		return eventID, audit.SubjectAdmin
	}
	return eventID, subjectAnonymous
}

// ClientIP returns the client IP from gRPC metadata (x-forwarded-for, x-real-ip) or peer, or "unknown".
func ClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("x-forwarded-for"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				if i := strings.Index(s, ","); i > 0 {
					s = strings.TrimSpace(s[:i])
				}
				return s
			}
		}
		if vals := md.Get("x-real-ip"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				return s
			}
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}
