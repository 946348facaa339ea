package domain

import "time"

// AuditLog represents an audit event. Subject is a masked phone number, "admin", or empty.
type AuditLog struct {
	ID        string
	EventID   string
	Subject   string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
