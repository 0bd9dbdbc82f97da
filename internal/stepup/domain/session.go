package domain

import "time"

// Method identifies how a verification challenge is answered.
type Method string

const (
	// MethodSMS challenges the subject with a random numeric code delivered
	// out of band. Only a one-way hash of the code is ever persisted.
	MethodSMS Method = "sms"

	// MethodTOTP challenges the subject to produce a code from their
	// enrolled authenticator. No challenge material is stored; the code is
	// checked live against the enrolled secret.
	MethodTOTP Method = "totp"
)

// Valid reports whether m is a known challenge method.
func (m Method) Valid() bool {
	return m == MethodSMS || m == MethodTOTP
}

// VerificationSession is a pending second-factor challenge. A session is
// single use: it is destroyed on successful verification, expiry, lockout
// promotion, or explicit cancellation.
type VerificationSession struct {
	ID        string // ULID
	SubjectID string
	Method    Method

	// CodeHash is the Argon2id hash of the delivered code for sms sessions,
	// empty for totp sessions.
	CodeHash string

	// Destination is the delivery address for sms sessions, kept so resend
	// can re-dispatch without the caller repeating it.
	Destination string

	// Step-up context carried from the gate so a completed challenge can be
	// turned into an authorization receipt. Zero-valued for challenges that
	// were initiated directly.
	ActionType ActionType
	Amount     float64
	Currency   string

	Attempts  int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its expiry at the given time.
func (s VerificationSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
