package store

import (
	"context"
	"errors"
	"time"

	"github.com/eventia/stepup/internal/stepup/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface over the document store. Concrete
// drivers (mongo for production, memory for tests and caching) implement it.
// Sub-repositories keep concerns tidy; each record type is an independent
// keyed document, so cross-repository transactions are not part of the
// contract; the one mutation that must be atomic (the attempts counter) is
// atomic within IncrementAttempts itself.
type Store interface {
	Sessions() Sessions
	Lockouts() Lockouts
	Devices() Devices
	Receipts() Receipts
	Enrollments() Enrollments
	AuditEvents() AuditEvents

	// ApplyMigrations bootstraps collections and indexes.
	ApplyMigrations() error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close(ctx context.Context) error
}

type Sessions interface {
	// Create persists a new challenge session.
	Create(ctx context.Context, s domain.VerificationSession) error

	// Get returns a session by id, ErrNotFound if absent.
	Get(ctx context.Context, id string) (domain.VerificationSession, error)

	// IncrementAttempts atomically bumps the failed-attempt counter and
	// returns the updated session. Concurrent wrong guesses against the same
	// session must each be counted exactly once, or the lockout guarantee
	// breaks.
	IncrementAttempts(ctx context.Context, id string) (domain.VerificationSession, error)

	// Delete destroys a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes sessions whose expiry has passed (housekeeping).
	DeleteExpired(ctx context.Context, now time.Time) error
}

type Lockouts interface {
	// Upsert records a lockout for a subject, replacing any existing one.
	Upsert(ctx context.Context, l domain.LockoutRecord) error

	// ActiveBySubject returns the subject's lockout if it is still in force.
	ActiveBySubject(ctx context.Context, subjectID string, now time.Time) (domain.LockoutRecord, error)

	// BySession returns the lockout triggered by the given session, if any.
	BySession(ctx context.Context, sessionID string) (domain.LockoutRecord, error)

	// DeleteExpired removes lockouts whose window has passed (housekeeping).
	DeleteExpired(ctx context.Context, now time.Time) error
}

type Devices interface {
	// Upsert records or refreshes a trusted device for a subject/device pair.
	Upsert(ctx context.Context, d domain.TrustedDevice) error

	// Get returns the trusted-device row for the pair, ErrNotFound if absent.
	Get(ctx context.Context, subjectID, deviceID string) (domain.TrustedDevice, error)

	// ListActive returns the subject's devices with expiry still ahead of now.
	ListActive(ctx context.Context, subjectID string, now time.Time) ([]domain.TrustedDevice, error)

	// Delete revokes a single device.
	Delete(ctx context.Context, subjectID, deviceID string) error

	// DeleteAll revokes every device for a subject.
	DeleteAll(ctx context.Context, subjectID string) error

	// DeleteExpired removes rows whose trust window has passed (housekeeping).
	DeleteExpired(ctx context.Context, now time.Time) error
}

type Receipts interface {
	// Create persists a freshly minted authorization receipt.
	Create(ctx context.Context, r domain.AuthorizedAction) error

	// LatestValid returns the most recent unexpired receipt for the
	// subject/action pair, ErrNotFound when none qualifies.
	LatestValid(ctx context.Context, subjectID string, action domain.ActionType, now time.Time) (domain.AuthorizedAction, error)

	// DeleteExpired removes expired receipts (housekeeping).
	DeleteExpired(ctx context.Context, now time.Time) error
}

type Enrollments interface {
	// Upsert stores a subject's enrollment, replacing any previous one.
	// Re-enrollment is the only way a secret rotates.
	Upsert(ctx context.Context, e domain.TOTPEnrollment) error

	// Get returns the subject's enrollment, ErrNotFound if absent.
	Get(ctx context.Context, subjectID string) (domain.TOTPEnrollment, error)

	// Activate marks the enrollment as confirmed at the given time.
	Activate(ctx context.Context, subjectID string, at time.Time) error

	// Delete removes the enrollment (totp disabled).
	Delete(ctx context.Context, subjectID string) error
}

type AuditEvents interface {
	// Append persists an audit event.
	Append(ctx context.Context, ev domain.AuditEvent) error

	// ListBySubject returns the newest events for a subject, newest first.
	ListBySubject(ctx context.Context, subjectID string, limit int) ([]domain.AuditEvent, error)
}
