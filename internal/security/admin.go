package security

import (
	"crypto/subtle"
	"errors"
)

const adminSubject = "admin"

var (
	// ErrAdminNotConfigured is returned when neither an admin password nor a password hash is set.
	ErrAdminNotConfigured = errors.New("admin password is not configured")
	// ErrInvalidCredentials is returned for a wrong admin password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AdminCodec issues and verifies the single shared admin bearer token.
type AdminCodec struct {
	signer hmacSigner
}

// NewAdminCodec returns a codec signing with secret. Returns ErrSecretMissing when secret is empty.
func NewAdminCodec(secret string) (*AdminCodec, error) {
	s, err := newHMACSigner(secret)
	if err != nil {
		return nil, err
	}
	return &AdminCodec{signer: s}, nil
}

// Issue returns the admin token: base64url(HMAC-SHA256(secret, "admin")).
func (c *AdminCodec) Issue() (string, error) {
	if c == nil {
		return "", ErrSecretMissing
	}
	sig, err := c.signer.mac(adminSubject)
	if err != nil {
		return "", err
	}
	return tokenEncoding.EncodeToString(sig), nil
}

// Verify reports whether token is the current admin token. Unequal lengths are rejected before
// the constant-time comparison.
func (c *AdminCodec) Verify(token string) bool {
	want, err := c.Issue()
	if err != nil || token == "" {
		return false
	}
	if len(token) != len(want) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(want)) == 1
}

// AdminAuthenticator checks the admin password, preferring a bcrypt hash when one is configured.
type AdminAuthenticator struct {
	password     string
	passwordHash string
	hasher       *Hasher
}

// NewAdminAuthenticator returns an authenticator. hasher may be nil when passwordHash is empty.
func NewAdminAuthenticator(password, passwordHash string, hasher *Hasher) *AdminAuthenticator {
	if hasher == nil {
		hasher = NewHasher(0)
	}
	return &AdminAuthenticator{password: password, passwordHash: passwordHash, hasher: hasher}
}

// CheckPassword returns nil when candidate is the admin password, ErrInvalidCredentials when it is not,
// and ErrAdminNotConfigured when no password is configured.
func (a *AdminAuthenticator) CheckPassword(candidate string) error {
	if a == nil || (a.password == "" && a.passwordHash == "") {
		return ErrAdminNotConfigured
	}
	if candidate == "" {
		return ErrInvalidCredentials
	}
	if a.passwordHash != "" {
		if err := a.hasher.Compare(a.passwordHash, []byte(candidate)); err != nil {
			return ErrInvalidCredentials
		}
		return nil
	}
	if len(candidate) != len(a.password) ||
		subtle.ConstantTimeCompare([]byte(candidate), []byte(a.password)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
