package server

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/omerA/v0-guest-event-app/internal/audit"
	auditrepo "github.com/omerA/v0-guest-event-app/internal/audit/repository"
	"github.com/omerA/v0-guest-event-app/internal/devotp"
	eventdomain "github.com/omerA/v0-guest-event-app/internal/event/domain"
	eventrepo "github.com/omerA/v0-guest-event-app/internal/event/repository"
	guestrepo "github.com/omerA/v0-guest-event-app/internal/guest/repository"
	guestservice "github.com/omerA/v0-guest-event-app/internal/guest/service"
	"github.com/omerA/v0-guest-event-app/internal/policy/engine"
	"github.com/omerA/v0-guest-event-app/internal/rpc"
	"github.com/omerA/v0-guest-event-app/internal/security"
	"github.com/omerA/v0-guest-event-app/internal/server/interceptors"
	verificationrepo "github.com/omerA/v0-guest-event-app/internal/verification/repository"
	verificationservice "github.com/omerA/v0-guest-event-app/internal/verification/service"
)

// mockServiceRegistrar implements grpc.ServiceRegistrar for testing.
type mockServiceRegistrar struct {
	services []string
}

func (m *mockServiceRegistrar) RegisterService(desc *grpc.ServiceDesc, impl interface{}) {
	m.services = append(m.services, desc.ServiceName)
}

func TestRegisterServices_DevServiceNotRegisteredWhenNil(t *testing.T) {
	mockReg := &mockServiceRegistrar{}
	RegisterServices(mockReg, Deps{})

	want := []string{rpc.VerificationServiceName, rpc.ResponseServiceName, rpc.AdminServiceName, "grpc.health.v1.Health"}
	if len(mockReg.services) != len(want) {
		t.Fatalf("registered %v, want %v", mockReg.services, want)
	}
	for i := range want {
		if mockReg.services[i] != want[i] {
			t.Errorf("services[%d] = %q, want %q", i, mockReg.services[i], want[i])
		}
	}
}

func TestRegisterServices_DevServiceRegisteredWhenProvided(t *testing.T) {
	mockReg := &mockServiceRegistrar{}
	RegisterServices(mockReg, Deps{DevStore: devotp.NewMemoryStore()})

	if len(mockReg.services) != 5 || mockReg.services[4] != rpc.DevServiceName {
		t.Errorf("registered %v, want DevService last", mockReg.services)
	}
}

func TestMethodAccess_CoversEveryRegisteredMethod(t *testing.T) {
	access := MethodAccess()
	for _, desc := range []*grpc.ServiceDesc{&rpc.VerificationServiceDesc, &rpc.ResponseServiceDesc, &rpc.AdminServiceDesc, &rpc.DevServiceDesc} {
		for _, m := range desc.Methods {
			full := "/" + desc.ServiceName + "/" + m.MethodName
			if _, ok := access[full]; !ok {
				t.Errorf("%s has no access level", full)
			}
		}
	}
}

type e2e struct {
	conn   *grpc.ClientConn
	audits *auditrepo.MemoryRepository
}

func startServer(t *testing.T) *e2e {
	t.Helper()
	ctx := context.Background()
	policy, err := engine.NewOPAEvaluator(ctx)
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	audits := auditrepo.NewMemoryRepository()
	auditLogger := audit.NewLogger(audits, interceptors.ClientIP)
	devStore := devotp.NewMemoryStore()
	events := eventrepo.NewMemoryRepository(&eventdomain.Event{ID: "gala", Name: "Gala", CreatedAt: time.Now().UTC()})
	verifier := verificationservice.NewService(verificationrepo.NewMemoryRepository(), events, nil, verificationservice.Options{
		DevStore: devStore,
		Audit:    auditLogger,
	})

	deps := Deps{
		Codes:               verifier,
		Gate:                guestservice.NewGate(guestrepo.NewMemoryRepository(), auditLogger, nil),
		Sessions:            security.NewTestSessionCodec(),
		AdminTokens:         security.NewTestAdminCodec(),
		AdminPasswords:      security.NewAdminAuthenticator("hunter2", "", nil),
		AdminTokenTTL:       8 * time.Hour,
		Policy:              policy,
		Audit:               auditLogger,
		HealthPolicyChecker: policy,
		DevStore:            devStore,
	}
	s := NewServer(deps)
	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &e2e{conn: conn, audits: audits}
}

func bearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func (e *e2e) call(t *testing.T, ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	t.Helper()
	return rpc.Invoke(ctx, e.conn, method, fields)
}

func wantCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	if status.Code(err) != want {
		t.Fatalf("code = %v, want %v (err=%v)", status.Code(err), want, err)
	}
}

func TestEndToEnd_GuestAndAdminFlow(t *testing.T) {
	e := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Unknown events are rejected before any code is issued.
	_, err := e.call(t, ctx, rpc.MethodSendCode, map[string]any{"phone": "15551234567", "event_id": "picnic"})
	wantCode(t, err, codes.InvalidArgument)

	if _, err := e.call(t, ctx, rpc.MethodSendCode, map[string]any{"phone": "+1 (555) 123-4567", "event_id": "gala"}); err != nil {
		t.Fatalf("SendCode: %v", err)
	}
	dev, err := e.call(t, ctx, rpc.MethodDevGetCode, map[string]any{"phone": "15551234567", "event_id": "gala"})
	if err != nil {
		t.Fatalf("GetCode: %v", err)
	}
	code := rpc.String(dev, "code")

	_, err = e.call(t, ctx, rpc.MethodVerifyCode, map[string]any{"phone": "15551234567", "event_id": "gala", "code": "000000"})
	wantCode(t, err, codes.Unauthenticated)

	verified, err := e.call(t, ctx, rpc.MethodVerifyCode, map[string]any{"phone": "15551234567", "event_id": "gala", "code": code})
	if err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if verified.GetFields()["already_responded"].GetBoolValue() {
		t.Error("already_responded should be false before submitting")
	}
	token := rpc.String(verified, "session_token")

	// A code is consumed exactly once.
	_, err = e.call(t, ctx, rpc.MethodVerifyCode, map[string]any{"phone": "15551234567", "event_id": "gala", "code": code})
	wantCode(t, err, codes.Unauthenticated)

	_, err = e.call(t, ctx, rpc.MethodGetResponse, nil)
	wantCode(t, err, codes.Unauthenticated)

	submitted, err := e.call(t, bearer(ctx, token), rpc.MethodSubmitResponse, map[string]any{
		"responses": map[string]any{"q-name": "Ada Lovelace", "q-attending": "yes"},
	})
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	guest, _ := rpc.Object(submitted, "guest")
	if guest["name"] != "Ada Lovelace" || guest["phone"] != "15551234567" {
		t.Errorf("guest = %v", guest)
	}

	_, err = e.call(t, bearer(ctx, token), rpc.MethodSubmitResponse, map[string]any{
		"event_id":  "picnic",
		"responses": map[string]any{"q-name": "Mallory"},
	})
	wantCode(t, err, codes.PermissionDenied)

	// Session tokens do not open admin methods.
	_, err = e.call(t, bearer(ctx, token), rpc.MethodListGuests, map[string]any{"event_id": "gala"})
	wantCode(t, err, codes.Unauthenticated)

	_, err = e.call(t, ctx, rpc.MethodAdminLogin, map[string]any{"password": "wrong"})
	wantCode(t, err, codes.Unauthenticated)

	login, err := e.call(t, ctx, rpc.MethodAdminLogin, map[string]any{"password": "hunter2"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	list, err := e.call(t, bearer(ctx, rpc.String(login, "admin_token")), rpc.MethodListGuests, map[string]any{"event_id": "gala"})
	if err != nil {
		t.Fatalf("ListGuests: %v", err)
	}
	guests := list.GetFields()["guests"].GetListValue().GetValues()
	if len(guests) != 1 || guests[0].GetStructValue().GetFields()["name"].GetStringValue() != "Ada Lovelace" {
		t.Errorf("guests = %v", guests)
	}

	entries, err := e.audits.ListByEvent(ctx, "gala", 100, 0)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	seen := map[string]bool{}
	for _, a := range entries {
		seen[a.Action] = true
	}
	for _, action := range []string{audit.ActionCodeSent, audit.ActionCodeRejected, audit.ActionCodeVerified, audit.ActionResponseSubmitted, "list"} {
		if !seen[action] {
			t.Errorf("audit log missing %q (have %v)", action, seen)
		}
	}
}

func TestEndToEnd_Health(t *testing.T) {
	e := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(e.conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("status = %v, want SERVING", resp.GetStatus())
	}
}
