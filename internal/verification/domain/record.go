package domain

import "time"

// DefaultTTL is how long an issued code stays verifiable.
const DefaultTTL = 5 * time.Minute

// Record is a stored one-time code for a (phone, event) pair (otp_records table).
// CodeHash is the salted digest; the plaintext code is never stored.
type Record struct {
	ID        string
	Phone     string
	EventID   string
	CodeHash  string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Active reports whether the record can still be consumed at now.
func (r *Record) Active(now time.Time) bool {
	return r != nil && !r.Used && now.Before(r.ExpiresAt)
}
