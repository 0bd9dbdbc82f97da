package domain

import "time"

// TOTPEnrollment holds a subject's shared authenticator secret. A fresh
// enrollment is pending until the subject proves possession by submitting a
// valid code; only active enrollments satisfy totp challenges.
type TOTPEnrollment struct {
	SubjectID   string
	Secret      string // unpadded base32; owned exclusively by the subject
	Account     string // label shown in the authenticator app
	CreatedAt   time.Time
	ActivatedAt *time.Time
}

// Active reports whether the enrollment has been confirmed with a valid code.
func (e TOTPEnrollment) Active() bool {
	return e.ActivatedAt != nil
}
