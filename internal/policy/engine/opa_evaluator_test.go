package engine

import (
	"context"
	"testing"
)

func newEvaluator(t *testing.T) *OPAEvaluator {
	t.Helper()
	e, err := NewOPAEvaluator(context.Background())
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	return e
}

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	e := newEvaluator(t)
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAEvaluator_Allow(t *testing.T) {
	e := newEvaluator(t)
	testCases := []struct {
		name string
		req  AccessRequest
		want bool
	}{
		{"public anonymous", AccessRequest{Required: AccessPublic}, true},
		{"public with guest", AccessRequest{Required: AccessPublic, PrincipalKind: PrincipalGuest, PrincipalEventID: "gala"}, true},
		{"admin method as admin", AccessRequest{Required: AccessAdmin, PrincipalKind: PrincipalAdmin}, true},
		{"admin method as guest", AccessRequest{Required: AccessAdmin, PrincipalKind: PrincipalGuest, PrincipalEventID: "gala"}, false},
		{"admin method anonymous", AccessRequest{Required: AccessAdmin}, false},
		{"guest method as guest", AccessRequest{Required: AccessGuest, PrincipalKind: PrincipalGuest, PrincipalEventID: "gala"}, true},
		{"guest method same event", AccessRequest{Required: AccessGuest, PrincipalKind: PrincipalGuest, PrincipalEventID: "gala", RequestEventID: "gala"}, true},
		{"guest method other event", AccessRequest{Required: AccessGuest, PrincipalKind: PrincipalGuest, PrincipalEventID: "gala", RequestEventID: "picnic"}, false},
		{"guest method without event", AccessRequest{Required: AccessGuest, PrincipalKind: PrincipalGuest}, false},
		{"guest method as admin", AccessRequest{Required: AccessGuest, PrincipalKind: PrincipalAdmin}, false},
		{"guest method anonymous", AccessRequest{Required: AccessGuest}, false},
		{"unknown requirement", AccessRequest{Required: "root", PrincipalKind: PrincipalAdmin}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Allow(context.Background(), tc.req)
			if err != nil {
				t.Fatalf("Allow: %v", err)
			}
			if got != tc.want {
				t.Errorf("Allow = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewOPAEvaluatorWithPolicy(t *testing.T) {
	ctx := context.Background()
	if _, err := NewOPAEvaluatorWithPolicy(ctx, "package rsvp.access\n\nallow if {"); err == nil {
		t.Fatal("expected compile error for malformed policy")
	}

	e, err := NewOPAEvaluatorWithPolicy(ctx, "package rsvp.access\n\nallow := true\n")
	if err != nil {
		t.Fatalf("NewOPAEvaluatorWithPolicy: %v", err)
	}
	got, err := e.Allow(ctx, AccessRequest{Required: AccessAdmin})
	if err != nil || !got {
		t.Errorf("Allow = %v, %v; want true", got, err)
	}

	undefined, err := NewOPAEvaluatorWithPolicy(ctx, "package rsvp.access\n\nallow if input.required == \"never\"\n")
	if err != nil {
		t.Fatalf("NewOPAEvaluatorWithPolicy: %v", err)
	}
	got, err = undefined.Allow(ctx, AccessRequest{Required: AccessPublic})
	if err != nil || got {
		t.Errorf("undefined decision: Allow = %v, %v; want false", got, err)
	}
	if err := undefined.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck should fail when the policy denies public requests")
	}
}
