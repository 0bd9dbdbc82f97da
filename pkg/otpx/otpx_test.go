package otpx_test

import (
	"encoding/base32"
	"strings"
	"testing"
	"time"

	"github.com/eventia/stepup/pkg/otpx"
	"github.com/stretchr/testify/require"
)

// RFC 4226 Appendix D reference secret: "12345678901234567890" in ASCII.
var rfcSecret = []byte("12345678901234567890")

func TestHOTPReferenceVectors(t *testing.T) {
	t.Parallel()

	// Expected codes for counters 0-9, straight from RFC 4226 Appendix D.
	expected := []string{
		"755224", "287082", "359152", "969429", "338314",
		"254676", "287922", "162583", "399871", "520489",
	}

	for counter, want := range expected {
		code, err := otpx.HOTP(rfcSecret, uint64(counter), 6)
		require.NoError(t, err)
		require.Equal(t, want, code, "counter %d", counter)
	}
}

func TestHOTPZeroPadding(t *testing.T) {
	t.Parallel()

	// Every code must come back at exactly the requested width, even when
	// the truncated value has leading zeros.
	for counter := uint64(0); counter < 100; counter++ {
		code, err := otpx.HOTP(rfcSecret, counter, 6)
		require.NoError(t, err)
		require.Len(t, code, 6)
	}
}

func TestValidateAtDriftWindow(t *testing.T) {
	t.Parallel()

	secret, err := otpx.GenerateSecret()
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	code, err := otpx.GenerateAt(secret, now)
	require.NoError(t, err)

	cases := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"current period", 0, true},
		{"one period behind", -otpx.Period * time.Second, true},
		{"one period ahead", otpx.Period * time.Second, true},
		{"two periods behind", -2 * otpx.Period * time.Second, false},
		{"two periods ahead", 2 * otpx.Period * time.Second, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := otpx.ValidateAt(secret, code, now.Add(tc.offset))
			require.NoError(t, err)
			require.Equal(t, tc.want, ok)
		})
	}
}

func TestValidateAtRejectsWrongLength(t *testing.T) {
	t.Parallel()

	secret, err := otpx.GenerateSecret()
	require.NoError(t, err)

	now := time.Now()
	for _, code := range []string{"", "12345", "1234567", "12345678901234567890"} {
		ok, err := otpx.ValidateAt(secret, code, now)
		require.NoError(t, err)
		require.False(t, ok, "code %q should short-circuit on length", code)
	}
}

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 32 {
		secret, err := otpx.GenerateSecret()
		require.NoError(t, err)

		raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
		require.NoError(t, err)
		require.Len(t, raw, otpx.SecretSize)

		_, dup := seen[secret]
		require.False(t, dup, "secrets must not repeat")
		seen[secret] = struct{}{}
	}
}

func TestProvisioningURI(t *testing.T) {
	t.Parallel()

	t.Run("exact shape", func(t *testing.T) {
		uri := otpx.ProvisioningURI("Eventia", "supplier@example.com", "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ")
		require.Equal(t,
			"otpauth://totp/Eventia:supplier@example.com"+
				"?secret=GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"+
				"&issuer=Eventia&algorithm=SHA1&digits=6&period=30",
			uri,
		)
	})

	t.Run("escapes issuer and account", func(t *testing.T) {
		uri := otpx.ProvisioningURI("Eventia App", "a b@example.com", "SECRET")
		require.True(t, strings.HasPrefix(uri, "otpauth://totp/Eventia%20App:a%20b@example.com?"))
		require.NotContains(t, strings.SplitN(uri, "?", 2)[0], " ")
	})
}
