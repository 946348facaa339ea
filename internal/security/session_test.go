package security

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestNewSessionCodec_RequiresSecret(t *testing.T) {
	if _, err := NewSessionCodec(""); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("err = %v, want ErrSecretMissing", err)
	}
	var c *SessionCodec
	if _, err := c.Encode("gala", "15551234567"); !errors.Is(err, ErrSecretMissing) {
		t.Errorf("nil codec Encode err = %v, want ErrSecretMissing", err)
	}
	if _, err := c.Decode("anything"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("nil codec Decode err = %v, want ErrInvalidToken", err)
	}
}

func TestSessionCodec_RoundTrip(t *testing.T) {
	c := NewTestSessionCodec()
	pairs := []Session{
		{"gala", "15551234567"},
		{"annual-gathering-2026", "4915112345678"},
		{"event.with.dots", "1234567"},
		{"e", "phone:with:colons"},
	}
	for _, p := range pairs {
		token, err := c.Encode(p.EventID, p.Phone)
		if err != nil {
			t.Fatalf("Encode(%q, %q): %v", p.EventID, p.Phone, err)
		}
		if strings.ContainsAny(token, "+/=") {
			t.Errorf("token %q is not URL-safe", token)
		}
		got, err := c.Decode(token)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != p {
			t.Errorf("Decode = %+v, want %+v", got, p)
		}
	}
}

func TestSessionCodec_EncodeRejectsBadInput(t *testing.T) {
	c := NewTestSessionCodec()
	for _, tc := range []struct{ event, phone string }{
		{"", "15551234567"},
		{"ga:la", "15551234567"},
		{"gala", ""},
	} {
		if _, err := c.Encode(tc.event, tc.phone); err == nil {
			t.Errorf("Encode(%q, %q) should fail", tc.event, tc.phone)
		}
	}
}

func TestSessionCodec_TamperAnyCharacter(t *testing.T) {
	c := NewTestSessionCodec()
	token, err := c.Encode("gala", "15551234567")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 0; i < len(token); i++ {
		repl := byte('A')
		if token[i] == 'A' {
			repl = 'B'
		}
		tampered := token[:i] + string(repl) + token[i+1:]
		if _, err := c.Decode(tampered); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("tampered token at position %d decoded: err = %v", i, err)
		}
	}
}

func TestSessionCodec_WrongSecret(t *testing.T) {
	token, _ := NewTestSessionCodec().Encode("gala", "15551234567")
	other, _ := NewSessionCodec(testSecret + "x")
	if _, err := other.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
	flipped, _ := NewSessionCodec("u" + testSecret[1:])
	if _, err := flipped.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestSessionCodec_DecodeMalformed(t *testing.T) {
	c := NewTestSessionCodec()
	enc := base64.RawURLEncoding.EncodeToString
	sig, _ := c.signer.sign("gala:15551234567")
	noPhoneSig, _ := c.signer.sign("gala:")
	noColonSig, _ := c.signer.sign("gala")
	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "!!!"},
		{"padded", enc([]byte("gala:15551234567."+sig)) + "="},
		{"no delimiter", enc([]byte("gala:15551234567" + sig))},
		{"uppercase signature", enc([]byte("gala:15551234567." + strings.ToUpper(sig)))},
		{"truncated signature", enc([]byte("gala:15551234567." + sig[:10]))},
		{"empty phone", enc([]byte("gala:." + noPhoneSig))},
		{"no colon", enc([]byte("gala." + noColonSig))},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Decode(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestSessionCodec_EventIsolation(t *testing.T) {
	c := NewTestSessionCodec()
	tokenA, _ := c.Encode("event-a", "15551234567")
	tokenB, _ := c.Encode("event-b", "15551234567")
	if tokenA == tokenB {
		t.Fatal("tokens for different events must differ")
	}
	s, err := c.Decode(tokenA)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.EventID != "event-a" {
		t.Errorf("EventID = %q, want event-a", s.EventID)
	}
}
