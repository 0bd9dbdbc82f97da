package domain

import "time"

// TrustedDevice exempts a previously verified device from challenges until
// ExpiresAt. Rows are only created immediately after a successful
// verification with an explicit "trust this device" flag; device identity
// (fingerprinting) is the caller's concern.
type TrustedDevice struct {
	SubjectID string
	DeviceID  string
	Name      string
	TrustedAt time.Time
	ExpiresAt time.Time
}

// Trusted reports whether the exemption is still in force at the given time.
func (d TrustedDevice) Trusted(now time.Time) bool {
	return now.Before(d.ExpiresAt)
}
