package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/omerA/v0-guest-event-app/internal/audit/domain"
	auditrepo "github.com/omerA/v0-guest-event-app/internal/audit/repository"
)

// Actions recorded by the verification, guest and admin code paths.
const (
	ActionCodeSent           = "code_sent"
	ActionCodeDispatchFailed = "code_dispatch_failed"
	ActionCodeVerified       = "code_verified"
	ActionCodeRejected       = "code_rejected"
	ActionResponseSubmitted  = "response_submitted"
	ActionAdminLogin         = "admin_login"
	ActionAdminLoginFailed   = "admin_login_failed"
)

// SubjectAdmin is the audit subject for admin actions.
const SubjectAdmin = "admin"

// IPExtractor returns the client IP from the request context (e.g. gRPC metadata or peer).
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, eventID, subject, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger returns an AuditLogger that persists to repo and uses ipExtractor for client IP.
// ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// LogEvent writes one audit log entry. Subject must already be masked.
func (l *Logger) LogEvent(ctx context.Context, eventID, subject, action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Subject:   subject,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}
