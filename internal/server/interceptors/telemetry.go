package interceptors

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/omerA/v0-guest-event-app/internal/telemetry"
	"github.com/omerA/v0-guest-event-app/internal/verification"
)

// grpcRequestMetadata is the JSON shape stored in Event.Metadata for grpc_request events.
type grpcRequestMetadata struct {
	FullMethod string `json:"full_method"`
	StatusCode string `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// TelemetryUnary returns a unary server interceptor that emits a grpc_request event after each RPC.
// Best-effort: emits run asynchronously and never fail the RPC. If emitter is nil, the interceptor no-ops.
// skipMethods is the set of full method names to not emit (e.g. health checks).
func TelemetryUnary(emitter telemetry.EventEmitter, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if emitter == nil || skipMethods[info.FullMethod] {
			return resp, err
		}
		meta := grpcRequestMetadata{
			FullMethod: info.FullMethod,
			StatusCode: status.Code(err).String(),
			DurationMs: time.Since(start).Milliseconds(),
			ClientIP:   ClientIP(ctx),
		}
		var eventID, subject string
		if s, ok := GetGuest(ctx); ok {
			eventID, subject = s.EventID, verification.MaskPhone(s.Phone)
		} else if IsAdmin(ctx) {
			subject = "admin"
		}
		event := telemetry.NewEvent(eventID, subject, telemetry.EventGRPCRequest, "grpc_interceptor")
		event.Metadata, _ = json.Marshal(meta)
		telemetry.EmitAsync(emitter, ctx, event)
		return resp, err
	}
}
