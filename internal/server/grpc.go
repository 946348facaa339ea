package server

import (
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	adminhandler "github.com/omerA/v0-guest-event-app/internal/admin/handler"
	"github.com/omerA/v0-guest-event-app/internal/audit"
	"github.com/omerA/v0-guest-event-app/internal/devotp"
	devhandler "github.com/omerA/v0-guest-event-app/internal/devotp/handler"
	guesthandler "github.com/omerA/v0-guest-event-app/internal/guest/handler"
	guestservice "github.com/omerA/v0-guest-event-app/internal/guest/service"
	healthhandler "github.com/omerA/v0-guest-event-app/internal/health/handler"
	"github.com/omerA/v0-guest-event-app/internal/policy/engine"
	"github.com/omerA/v0-guest-event-app/internal/rpc"
	"github.com/omerA/v0-guest-event-app/internal/security"
	"github.com/omerA/v0-guest-event-app/internal/server/interceptors"
	"github.com/omerA/v0-guest-event-app/internal/telemetry"
	verificationhandler "github.com/omerA/v0-guest-event-app/internal/verification/handler"
)

// Deps holds service dependencies for gRPC handlers and interceptors.
type Deps struct {
	// Codes issues and verifies one-time codes (e.g. *verification/service.Service).
	Codes verificationhandler.CodeService
	// Gate reads and writes guest responses.
	Gate *guestservice.Gate
	// Sessions encodes and decodes guest session tokens. If nil, VerifyCode and every guest RPC fail.
	Sessions *security.SessionCodec
	// AdminTokens issues and verifies the admin token. If nil, admin login and ListGuests fail.
	AdminTokens *security.AdminCodec
	// AdminPasswords checks the admin password.
	AdminPasswords adminhandler.PasswordChecker
	// AdminTokenTTL is the max age advertised with the admin token.
	AdminTokenTTL time.Duration
	// Policy decides per-RPC access. If nil, only AuthUnary guards the services.
	Policy engine.Evaluator
	// Audit records handler and interceptor audit entries. If nil, nothing is audited.
	Audit audit.AuditLogger
	// Telemetry receives auth and request events. If nil, none are emitted.
	Telemetry telemetry.EventEmitter
	// HealthPinger is used by the health service for readiness (e.g. *sql.DB). If nil, Check skips DB ping.
	HealthPinger healthhandler.Pinger
	// HealthPolicyChecker is used by the health service for readiness (e.g. OPA evaluator). If nil, Check skips policy check.
	HealthPolicyChecker healthhandler.PolicyChecker
	// DevStore enables the dev-only DevService (GetCode). If nil, DevService is not registered. Set only when dev OTP is enabled and not production.
	DevStore devotp.Store
}

// MethodAccess is the access level of every RPC the server exposes.
func MethodAccess() interceptors.MethodAccess {
	return interceptors.MethodAccess{
		rpc.MethodSendCode:       engine.AccessPublic,
		rpc.MethodVerifyCode:     engine.AccessPublic,
		rpc.MethodSubmitResponse: engine.AccessGuest,
		rpc.MethodGetResponse:    engine.AccessGuest,
		rpc.MethodAdminLogin:     engine.AccessPublic,
		rpc.MethodAdminLogout:    engine.AccessPublic,
		rpc.MethodListGuests:     engine.AccessAdmin,
		rpc.MethodDevGetCode:     engine.AccessPublic,
		rpc.MethodHealthCheck:    engine.AccessPublic,
		rpc.MethodHealthWatch:    engine.AccessPublic,
	}
}

// unobservedMethods are neither audited nor emitted as telemetry.
func unobservedMethods() map[string]bool {
	return map[string]bool{
		rpc.MethodHealthCheck: true,
		rpc.MethodHealthWatch: true,
	}
}

// UnaryInterceptors returns the interceptor chain in order: auth, access policy, audit, telemetry.
func UnaryInterceptors(deps Deps) []grpc.UnaryServerInterceptor {
	access := MethodAccess()
	skip := unobservedMethods()
	return []grpc.UnaryServerInterceptor{
		interceptors.AuthUnary(deps.Sessions, deps.AdminTokens, access),
		interceptors.AccessUnary(deps.Policy, access),
		interceptors.AuditUnary(deps.Audit, skip),
		interceptors.TelemetryUnary(deps.Telemetry, skip),
	}
}

// NewServer returns a gRPC server with the interceptor chain installed and all services registered.
func NewServer(deps Deps, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(UnaryInterceptors(deps)...))
	s := grpc.NewServer(opts...)
	RegisterServices(s, deps)
	return s
}

// RegisterServices registers all gRPC services with the given server.
//
// Service → handler mapping:
//   - rsvp.v1.VerificationService → internal/verification/handler
//   - rsvp.v1.ResponseService     → internal/guest/handler
//   - rsvp.v1.AdminService        → internal/admin/handler
//   - rsvp.v1.DevService          → internal/devotp/handler (dev mode only)
//   - grpc.health.v1.Health       → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	var responses verificationhandler.ResponseChecker
	var gate guesthandler.ResponseGate
	var guests adminhandler.GuestLister
	if deps.Gate != nil {
		responses, gate, guests = deps.Gate, deps.Gate, deps.Gate
	}
	rpc.RegisterVerificationServer(s, verificationhandler.NewServer(deps.Codes, deps.Sessions, responses))
	rpc.RegisterResponseServer(s, guesthandler.NewServer(gate))
	rpc.RegisterAdminServer(s, adminhandler.NewServer(deps.AdminPasswords, deps.AdminTokens, guests, deps.AdminTokenTTL, deps.Audit, deps.Telemetry))
	healthpb.RegisterHealthServer(s, healthhandler.NewServer(deps.HealthPinger, deps.HealthPolicyChecker))
	if deps.DevStore != nil {
		rpc.RegisterDevServer(s, devhandler.NewServer(deps.DevStore))
	}
}
