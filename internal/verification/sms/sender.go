// Package sms delivers one-time codes to phones through an SMS provider.
package sms

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when the selected provider has no credentials.
// Callers treat it as a configuration error, not a delivery failure.
var ErrNotConfigured = errors.New("sms: provider not configured")

// Sender dispatches a plaintext code to a digits-only phone number. Implementations must not log the code.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// Configurable is implemented by senders that can report missing credentials before a send is attempted.
type Configurable interface {
	Configured() bool
}
