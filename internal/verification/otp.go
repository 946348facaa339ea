// Package verification holds the one-time code primitives: generation, digesting,
// constant-time comparison and phone normalization.
package verification

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"hash/fnv"
	"math/big"
	"strconv"
	"strings"
)

const (
	codeMin  = 100000
	codeSpan = 900000

	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// ErrInvalidPhone is returned when a phone number does not normalize to 7–15 digits.
var ErrInvalidPhone = errors.New("invalid phone number")

// GenerateCode returns a 6-digit numeric code drawn uniformly from 100000–999999.
// Uses crypto/rand for randomness.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(codeMin+n.Int64(), 10), nil
}

// DemoCode derives a code from the phone number with FNV-1a. It is predictable by
// anyone who knows the number and must only be used behind OTP_DEMO_CODES.
func DemoCode(phone string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(phone))
	return strconv.FormatUint(uint64(codeMin+h.Sum32()%codeSpan), 10)
}

// HashCode returns the hex SHA-256 digest of code salted with the (event, phone) pair it was issued for.
func HashCode(eventID, phone, code string) string {
	h := sha256.Sum256([]byte(eventID + ":" + phone + ":" + code))
	return hex.EncodeToString(h[:])
}

// CodeEqual performs constant-time comparison of the provided code's digest with the stored digest.
// An empty code never matches.
func CodeEqual(eventID, phone, providedCode, storedHash string) bool {
	if providedCode == "" {
		return false
	}
	providedHash := HashCode(eventID, phone, providedCode)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}

// NormalizePhone strips every non-digit from raw and checks the 7–15 digit range.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

// MaskPhone keeps the last four digits for logs (e.g. "*******4567").
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
