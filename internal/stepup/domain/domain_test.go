package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/stretchr/testify/require"
)

func TestFailureKindMatching(t *testing.T) {
	t.Parallel()

	err := domain.NewInvalidCode(3)
	require.ErrorIs(t, err, domain.ErrInvalidCode)
	require.NotErrorIs(t, err, domain.ErrLocked)

	// Matching must survive wrapping.
	wrapped := fmt.Errorf("verify: %w", err)
	require.ErrorIs(t, wrapped, domain.ErrInvalidCode)

	var failure *domain.Failure
	require.True(t, errors.As(wrapped, &failure))
	require.Equal(t, 3, failure.Remaining)
}

func TestFailureLocalizedMessages(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, domain.ErrLocked.Message("en"))
	require.NotEmpty(t, domain.ErrLocked.Message("es"))
	require.NotEqual(t, domain.ErrLocked.Message("en"), domain.ErrLocked.Message("es"))

	// Unknown locales fall back to English.
	require.Equal(t, domain.ErrExpired.Message("en"), domain.ErrExpired.Message("xx"))
}

func TestSessionExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := domain.VerificationSession{ExpiresAt: now.Add(time.Minute)}
	require.False(t, s.Expired(now))
	require.True(t, s.Expired(now.Add(time.Minute)))
	require.True(t, s.Expired(now.Add(2*time.Minute)))
}

func TestLockoutActive(t *testing.T) {
	t.Parallel()

	now := time.Now()
	l := domain.LockoutRecord{LockedUntil: now.Add(30 * time.Minute)}
	require.True(t, l.Active(now))
	require.False(t, l.Active(now.Add(30*time.Minute)))
}

func TestTrustedDeviceWindow(t *testing.T) {
	t.Parallel()

	now := time.Now()
	d := domain.TrustedDevice{ExpiresAt: now.Add(30 * 24 * time.Hour)}
	require.True(t, d.Trusted(now))
	require.True(t, d.Trusted(now.Add(29*24*time.Hour)))
	require.False(t, d.Trusted(now.Add(30*24*time.Hour)))
}

func TestReceiptValidity(t *testing.T) {
	t.Parallel()

	now := time.Now()
	r := domain.AuthorizedAction{ExpiresAt: now.Add(15 * time.Minute)}
	require.True(t, r.Valid(now))
	require.False(t, r.Valid(now.Add(15*time.Minute)))
}

func TestMethodValid(t *testing.T) {
	t.Parallel()

	require.True(t, domain.MethodSMS.Valid())
	require.True(t, domain.MethodTOTP.Valid())
	require.False(t, domain.Method("email").Valid())
}

func TestActionTypeValid(t *testing.T) {
	t.Parallel()

	for _, a := range []domain.ActionType{
		domain.ActionPayment,
		domain.ActionAccountDeletion,
		domain.ActionDataExport,
		domain.ActionCredentialChange,
		domain.ActionAdminLogin,
	} {
		require.True(t, a.Valid(), "action %q", a)
	}
	require.False(t, domain.ActionType("reboot_universe").Valid())
	require.False(t, domain.ActionType("").Valid())
}
