package security

import (
	"encoding/hex"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSecretMissing is returned when no signing secret is configured. It is a configuration
// error, not an authentication failure.
var ErrSecretMissing = errors.New("session secret is not configured")

// hmacSigner computes lowercase hex HMAC-SHA256 signatures with a process-wide secret.
type hmacSigner struct {
	key []byte
}

func newHMACSigner(secret string) (hmacSigner, error) {
	if secret == "" {
		return hmacSigner{}, ErrSecretMissing
	}
	return hmacSigner{key: []byte(secret)}, nil
}

func (s hmacSigner) mac(payload string) ([]byte, error) {
	if len(s.key) == 0 {
		return nil, ErrSecretMissing
	}
	return jwt.SigningMethodHS256.Sign(payload, s.key)
}

func (s hmacSigner) sign(payload string) (string, error) {
	sig, err := s.mac(payload)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}

// verify reports whether sigHex is the canonical signature of payload. The MAC comparison is constant time.
func (s hmacSigner) verify(payload, sigHex string) bool {
	if len(s.key) == 0 {
		return false
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil || hex.EncodeToString(sig) != sigHex {
		return false
	}
	return jwt.SigningMethodHS256.Verify(payload, sig, s.key) == nil
}
