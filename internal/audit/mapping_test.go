package audit

import "testing"

func TestParseFullMethod(t *testing.T) {
	testCases := []struct {
		fullMethod string
		action     string
		resource   string
	}{
		{"/rsvp.v1.AdminService/ListGuests", "list", "guest"},
		{"/rsvp.v1.AdminService/Logout", "admin_logout", "admin"},
		{"/rsvp.v1.ResponseService/GetResponse", "get", "response"},
		{"/rsvp.v1.DevService/GetCode", "dev_code_read", "verification"},
		{"/rsvp.v1.VerificationService/SendCode", "send", "verification"},
		{"/rsvp.v1.VerificationService/VerifyCode", "verify", "verification"},
		{"/rsvp.v1.ResponseService/SubmitResponse", "submit", "response"},
		{"/grpc.health.v1.Health/Check", "check", "health"},
		{"no-slash", "unknown", "unknown"},
		{"/Service/Method", "method", "unknown"},
	}
	for _, tc := range testCases {
		t.Run(tc.fullMethod, func(t *testing.T) {
			ar := ParseFullMethod(tc.fullMethod)
			if ar.Action != tc.action {
				t.Errorf("action = %q, want %q", ar.Action, tc.action)
			}
			if ar.Resource != tc.resource {
				t.Errorf("resource = %q, want %q", ar.Resource, tc.resource)
			}
		})
	}
}

func TestSelfAudited(t *testing.T) {
	if !SelfAudited("/rsvp.v1.VerificationService/VerifyCode") {
		t.Error("VerifyCode should be self-audited")
	}
	if SelfAudited("/rsvp.v1.AdminService/ListGuests") {
		t.Error("ListGuests should be audited by the interceptor")
	}
}
