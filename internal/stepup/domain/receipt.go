package domain

import "time"

// AMR values recorded on receipts, describing how the authorization was
// satisfied.
const (
	AMRNone    = "none"    // threshold below any requirement
	AMRConfirm = "confirm" // explicit confirmation, no passcode
	AMRDevice  = "device"  // trusted-device exemption
	AMRSMS     = "sms"     // sms passcode challenge completed
	AMRTOTP    = "totp"    // authenticator passcode challenge completed
)

// AuthorizedAction is the short-lived receipt minted after a successful
// step-up verification. It is not renewable; once expired the subject must
// verify again.
type AuthorizedAction struct {
	ID           string // ULID
	SubjectID    string
	ActionType   ActionType
	Amount       float64
	Currency     string
	AMR          string
	AuthorizedAt time.Time
	ExpiresAt    time.Time
}

// Valid reports whether the receipt can still be consumed at the given time.
func (a AuthorizedAction) Valid(now time.Time) bool {
	return now.Before(a.ExpiresAt)
}
