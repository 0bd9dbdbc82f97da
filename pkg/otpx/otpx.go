// Package otpx is the single OTP engine for the service. Every call site
// (enrollment, challenge verification, provisioning) goes through this
// package so digits, period, and drift tolerance have one source of truth.
package otpx

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

const (
	// Digits is the passcode length (RFC 6238 standard).
	Digits = 6

	// Period is the TOTP time-step in seconds (RFC 6238 standard).
	Period = 30

	// Drift is the number of adjacent periods accepted on either side of
	// the current one, to tolerate clock skew between client and server.
	Drift = 1

	// SecretSize is the raw secret length in bytes (160 bits, the RFC 4226
	// recommendation).
	SecretSize = 20
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret returns a fresh shared secret as an unpadded base32 string.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("otpx: failed to generate secret: %w", err)
	}
	return b32.EncodeToString(buf), nil
}

// HOTP computes the RFC 4226 code for a raw secret and counter value using
// HMAC-SHA1 dynamic truncation. The result is a zero-padded decimal string
// of the requested length. Deterministic with respect to its inputs.
func HOTP(secret []byte, counter uint64, digits int) (string, error) {
	code, err := hotp.GenerateCodeCustom(b32.EncodeToString(secret), counter, hotp.ValidateOpts{
		Digits:    otp.Digits(digits),
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("otpx: hotp generation failed: %w", err)
	}
	return code, nil
}

// GenerateAt returns the TOTP code for the period containing t.
// The secret must be unpadded base32.
func GenerateAt(secret string, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, t, totp.ValidateOpts{
		Period:    Period,
		Digits:    Digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("otpx: totp generation failed: %w", err)
	}
	return code, nil
}

// ValidateAt checks a submitted code against the secret at time t, accepting
// codes from the current period and Drift periods on either side.
//
// Codes of the wrong length are rejected before any comparison so the check
// cannot leak timing information about partially matching codes.
func ValidateAt(secret, code string, t time.Time) (bool, error) {
	if len(code) != Digits {
		return false, nil
	}

	ok, err := totp.ValidateCustom(code, secret, t, totp.ValidateOpts{
		Period:    Period,
		Skew:      Drift,
		Digits:    Digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false, fmt.Errorf("otpx: totp validation failed: %w", err)
	}
	return ok, nil
}

// ProvisioningURI builds the otpauth URI consumed by authenticator apps via
// QR code. The parameter order and encoding are fixed; third-party apps key
// off this exact shape, so don't rebuild it with url.Values (which sorts
// parameters alphabetically).
func ProvisioningURI(issuer, account, secret string) string {
	return fmt.Sprintf(
		"otpauth://totp/%s:%s?secret=%s&issuer=%s&algorithm=SHA1&digits=%d&period=%d",
		url.PathEscape(issuer),
		url.PathEscape(account),
		secret,
		url.QueryEscape(issuer),
		Digits,
		Period,
	)
}
