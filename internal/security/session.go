package security

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidToken is returned for every token that fails to decode or verify, whatever the cause.
var ErrInvalidToken = errors.New("invalid token")

var tokenEncoding = base64.RawURLEncoding.Strict()

// SessionCodec builds and parses stateless guest session tokens binding an event ID to a phone number.
//
// A token is base64url("<eventID>:<phone>.<hex HMAC-SHA256>") without padding. Tokens carry no
// expiry; lifetime is bounded by the transport. Rotating the secret invalidates every token.
type SessionCodec struct {
	signer hmacSigner
}

// Session is the verified content of a guest session token.
type Session struct {
	EventID string
	Phone   string
}

// NewSessionCodec returns a codec signing with secret. Returns ErrSecretMissing when secret is empty.
func NewSessionCodec(secret string) (*SessionCodec, error) {
	s, err := newHMACSigner(secret)
	if err != nil {
		return nil, err
	}
	return &SessionCodec{signer: s}, nil
}

// Encode returns the token for (eventID, phone). eventID must be non-empty and free of ':'; phone must be non-empty.
func (c *SessionCodec) Encode(eventID, phone string) (string, error) {
	if c == nil {
		return "", ErrSecretMissing
	}
	if eventID == "" || strings.Contains(eventID, ":") || phone == "" {
		return "", errors.New("security: event id and phone are required and event id must not contain ':'")
	}
	payload := eventID + ":" + phone
	sig, err := c.signer.sign(payload)
	if err != nil {
		return "", err
	}
	return tokenEncoding.EncodeToString([]byte(payload + "." + sig)), nil
}

// Decode verifies token and returns the (event, phone) pair it carries. Every failure returns ErrInvalidToken.
func (c *SessionCodec) Decode(token string) (Session, error) {
	if c == nil || token == "" {
		return Session{}, ErrInvalidToken
	}
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	s := string(raw)
	dot := strings.LastIndexByte(s, '.')
	if dot < 0 {
		return Session{}, ErrInvalidToken
	}
	payload, sig := s[:dot], s[dot+1:]
	if !c.signer.verify(payload, sig) {
		return Session{}, ErrInvalidToken
	}
	eventID, phone, ok := strings.Cut(payload, ":")
	if !ok || eventID == "" || phone == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{EventID: eventID, Phone: phone}, nil
}
