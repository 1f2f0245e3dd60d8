package domain

import "time"

// Audit actions
const (
	AuditProviderNotConfigured = "provider_not_configured"
	AuditEvaluationCompleted   = "evaluation_completed"
	AuditEvaluationFailed      = "evaluation_failed"
)

// AuditEvent is an append-only trail entry.
type AuditEvent struct {
	ID          string
	OwnerID     string
	CandidateID string
	Action      string
	Detail      string
	CreatedAt   time.Time
}
