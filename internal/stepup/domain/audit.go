package domain

import "time"

// Audit event types.
const (
	AuditChallengeInitiated  = "challenge_initiated"
	AuditVerificationFailed  = "verification_failed"
	AuditLockoutTriggered    = "lockout_triggered"
	AuditDeviceTrusted       = "device_trusted"
	AuditDeviceRevoked       = "device_revoked"
	AuditTOTPEnrolled        = "totp_enrolled"
	AuditTOTPDisabled        = "totp_disabled"
	AuditActionAuthorized    = "action_authorized"
)

// Audit severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// AuditEvent is a structured security event shipped to the audit sink.
// Recording is fire-and-forget; a failing sink never blocks the operation
// that produced the event.
type AuditEvent struct {
	ID        string // ULID
	SubjectID string
	EventType string
	Severity  string
	Metadata  map[string]any
	At        time.Time
}
