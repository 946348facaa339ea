package engine

import "context"

// Access levels a method can require.
const (
	AccessPublic = "public"
	AccessGuest  = "guest"
	AccessAdmin  = "admin"
)

// Principal kinds carried in the request context after authentication.
const (
	PrincipalAnonymous = "anonymous"
	PrincipalGuest     = "guest"
	PrincipalAdmin     = "admin"
)

// AccessRequest is the input to an access decision for one RPC.
type AccessRequest struct {
	Method   string
	Required string
	// PrincipalKind is one of the Principal* constants.
	PrincipalKind string
	// PrincipalEventID is the event bound to a guest session; empty for other principals.
	PrincipalEventID string
	// RequestEventID is the event_id field of the request message, if any.
	RequestEventID string
}

// Evaluator decides whether a principal may call a method.
type Evaluator interface {
	Allow(ctx context.Context, req AccessRequest) (bool, error)
}
