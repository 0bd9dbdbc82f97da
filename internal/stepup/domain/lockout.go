package domain

import "time"

// Lockout reasons.
const (
	LockoutReasonMaxAttempts = "max_attempts"
)

// LockoutRecord blocks new challenge creation for a subject until LockedUntil.
// It outlives the session that triggered it: the session is destroyed on
// promotion while the lockout keeps the session id, so late verify calls on
// the dead session can still be answered with a lockout rather than a
// generic not-found.
type LockoutRecord struct {
	SubjectID   string
	SessionID   string // session whose exhausted attempts triggered the lockout
	Reason      string
	LockedUntil time.Time
	CreatedAt   time.Time
}

// Active reports whether the lockout still blocks the subject at the given time.
func (l LockoutRecord) Active(now time.Time) bool {
	return now.Before(l.LockedUntil)
}
