package security

// testSecret signs tokens in unit tests only.
const testSecret = "test-session-secret"

// NewTestSessionCodec returns a SessionCodec with a fixed test secret. For unit tests only.
func NewTestSessionCodec() *SessionCodec {
	c, _ := NewSessionCodec(testSecret)
	return c
}

// NewTestAdminCodec returns an AdminCodec with the same fixed test secret. For unit tests only.
func NewTestAdminCodec() *AdminCodec {
	c, _ := NewAdminCodec(testSecret)
	return c
}
