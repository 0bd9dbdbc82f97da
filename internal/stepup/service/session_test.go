package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventia/stepup/internal/stepup/audit"
	"github.com/eventia/stepup/internal/stepup/delivery"
	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/internal/stepup/store"
	"github.com/eventia/stepup/internal/stepup/store/drivers/memory"
	"github.com/eventia/stepup/pkg/cryptox"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "stepup-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func newSessionService(sender delivery.Sender) (*SessionService, *memory.Store) {
	st := memory.NewStore()
	return &SessionService{
		Store:   st,
		Sender:  sender,
		Auditor: audit.Nop{},
	}, st
}

// lastCode returns the most recently delivered code.
func lastCode(t *testing.T, sender *delivery.CaptureSender) string {
	t.Helper()
	sends := sender.Sends()
	require.NotEmpty(t, sends)
	return sends[len(sends)-1].Code
}

func TestInitiateSMS(t *testing.T) {
	ctx := context.Background()

	t.Run("DeliversCodeAndStoresOnlyHash", func(t *testing.T) {
		var sender delivery.CaptureSender
		svc, st := newSessionService(&sender)

		sess, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
		})
		require.NoError(t, err)
		require.Equal(t, 1, len(sender.Sends()))

		code := lastCode(t, &sender)
		require.Len(t, code, 6)

		stored, err := st.Sessions().Get(ctx, sess.ID)
		require.NoError(t, err)
		require.NotEqual(t, code, stored.CodeHash)
		require.NoError(t, cryptox.VerifyCode(code, stored.CodeHash))
		require.WithinDuration(t, sess.CreatedAt.Add(SessionValidity), sess.ExpiresAt, time.Second)
	})

	t.Run("DeliveryFailureLeavesNoSession", func(t *testing.T) {
		sender := &delivery.CaptureSender{Err: domain.ErrDeliveryFailure}
		svc, st := newSessionService(sender)

		sess, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
		})
		require.ErrorIs(t, err, domain.ErrDeliveryFailure)
		require.Empty(t, sess.ID)

		// A later initiate for the same subject starts clean.
		_, err = st.Lockouts().ActiveBySubject(ctx, "alice", time.Now())
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("RejectsUnknownMethod", func(t *testing.T) {
		svc, _ := newSessionService(&delivery.CaptureSender{})

		_, err := svc.Initiate(ctx, InitiateParams{SubjectID: "alice", Method: "carrier-pigeon"})
		require.ErrorIs(t, err, ErrUnknownMethod)
	})

	t.Run("LockedSubjectCannotInitiate", func(t *testing.T) {
		svc, st := newSessionService(&delivery.CaptureSender{})

		require.NoError(t, st.Lockouts().Upsert(ctx, domain.LockoutRecord{
			SubjectID:   "alice",
			SessionID:   "old-session",
			LockedUntil: time.Now().Add(10 * time.Minute),
		}))

		_, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
		})
		require.ErrorIs(t, err, domain.ErrLocked)
	})
}

func TestInitiateTOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("WithoutEnrollmentIsSetupRequired", func(t *testing.T) {
		svc, _ := newSessionService(&delivery.CaptureSender{})

		_, err := svc.Initiate(ctx, InitiateParams{SubjectID: "alice", Method: domain.MethodTOTP})
		require.ErrorIs(t, err, domain.ErrSetupRequired)
	})

	t.Run("PendingEnrollmentIsSetupRequired", func(t *testing.T) {
		svc, st := newSessionService(&delivery.CaptureSender{})

		require.NoError(t, st.Enrollments().Upsert(ctx, domain.TOTPEnrollment{
			SubjectID: "alice",
			Secret:    "JBSWY3DPEHPK3PXP",
			CreatedAt: time.Now(),
		}))

		_, err := svc.Initiate(ctx, InitiateParams{SubjectID: "alice", Method: domain.MethodTOTP})
		require.ErrorIs(t, err, domain.ErrSetupRequired)
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("CorrectCodeConsumesSession", func(t *testing.T) {
		var sender delivery.CaptureSender
		svc, _ := newSessionService(&sender)

		sess, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
		})
		require.NoError(t, err)

		verified, err := svc.Verify(ctx, sess.ID, "alice", lastCode(t, &sender))
		require.NoError(t, err)
		require.Equal(t, "alice", verified.SubjectID)

		// Single use: the session is gone.
		_, err = svc.Verify(ctx, sess.ID, "alice", lastCode(t, &sender))
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ForeignSessionIsNotFound", func(t *testing.T) {
		var sender delivery.CaptureSender
		svc, st := newSessionService(&sender)

		sess, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
		})
		require.NoError(t, err)

		// Another subject knowing the id cannot answer it, even with the
		// right code, and the owner's attempt budget is untouched.
		_, err = svc.Verify(ctx, sess.ID, "mallory", lastCode(t, &sender))
		require.ErrorIs(t, err, domain.ErrNotFound)

		stored, err := st.Sessions().Get(ctx, sess.ID)
		require.NoError(t, err)
		require.Equal(t, 0, stored.Attempts)

		_, err = svc.Verify(ctx, sess.ID, "alice", lastCode(t, &sender))
		require.NoError(t, err)
	})

	t.Run("WrongCodeReportsRemainingAttempts", func(t *testing.T) {
		var sender delivery.CaptureSender
		svc, _ := newSessionService(&sender)

		sess, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
		})
		require.NoError(t, err)

		_, err = svc.Verify(ctx, sess.ID, "alice", "000000")
		var failure *domain.Failure
		require.ErrorAs(t, err, &failure)
		require.Equal(t, domain.KindInvalidCode, failure.Kind)
		require.Equal(t, MaxAttempts-1, failure.Remaining)
	})

	t.Run("FifthWrongCodeLocksOut", func(t *testing.T) {
		var sender delivery.CaptureSender
		svc, st := newSessionService(&sender)

		sess, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
		})
		require.NoError(t, err)

		for i := 1; i < MaxAttempts; i++ {
			_, err = svc.Verify(ctx, sess.ID, "alice", "000000")
			var failure *domain.Failure
			require.ErrorAs(t, err, &failure)
			require.Equal(t, domain.KindInvalidCode, failure.Kind)
			require.Equal(t, MaxAttempts-i, failure.Remaining)
		}

		// Attempt five exhausts the budget.
		_, err = svc.Verify(ctx, sess.ID, "alice", "000000")
		require.ErrorIs(t, err, domain.ErrLocked)

		// The session is destroyed but a sixth attempt still reports the
		// lockout, not a generic not-found.
		_, err = svc.Verify(ctx, sess.ID, "alice", "000000")
		require.ErrorIs(t, err, domain.ErrLocked)

		// Even the correct code is refused now.
		_, err = svc.Verify(ctx, sess.ID, "alice", lastCode(t, &sender))
		require.ErrorIs(t, err, domain.ErrLocked)

		lockout, err := st.Lockouts().ActiveBySubject(ctx, "alice", time.Now())
		require.NoError(t, err)
		require.Equal(t, sess.ID, lockout.SessionID)
		require.Equal(t, domain.LockoutReasonMaxAttempts, lockout.Reason)
	})

	t.Run("ExpiredSessionIsDiscarded", func(t *testing.T) {
		svc, st := newSessionService(&delivery.CaptureSender{})

		hash, err := cryptox.HashCode("123456")
		require.NoError(t, err)
		require.NoError(t, st.Sessions().Create(ctx, domain.VerificationSession{
			ID:        "stale",
			SubjectID: "alice",
			Method:    domain.MethodSMS,
			CodeHash:  hash,
			CreatedAt: time.Now().Add(-10 * time.Minute),
			ExpiresAt: time.Now().Add(-5 * time.Minute),
		}))

		_, err = svc.Verify(ctx, "stale", "alice", "123456")
		require.ErrorIs(t, err, domain.ErrExpired)

		// The session was destroyed; retrying is now a not-found.
		_, err = svc.Verify(ctx, "stale", "alice", "123456")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UnknownSessionIsNotFound", func(t *testing.T) {
		svc, _ := newSessionService(&delivery.CaptureSender{})

		_, err := svc.Verify(ctx, "never-existed", "alice", "123456")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestResend(t *testing.T) {
	ctx := context.Background()

	t.Run("ReplacesTheSession", func(t *testing.T) {
		var sender delivery.CaptureSender
		svc, st := newSessionService(&sender)

		sess, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
		})
		require.NoError(t, err)
		first := lastCode(t, &sender)

		// Burn one attempt so the reset is observable.
		_, err = svc.Verify(ctx, sess.ID, "alice", "000000")
		require.ErrorIs(t, err, domain.ErrInvalidCode)

		replacement, err := svc.Resend(ctx, sess.ID, "alice")
		require.NoError(t, err)
		require.NotEqual(t, sess.ID, replacement.ID)
		require.Equal(t, "alice", replacement.SubjectID)
		require.True(t, replacement.ExpiresAt.After(sess.ExpiresAt) || replacement.ExpiresAt.Equal(sess.ExpiresAt))
		require.Equal(t, 0, replacement.Attempts)

		sends := sender.Sends()
		require.Len(t, sends, 2)
		require.Equal(t, "+15551234567", sends[1].Destination)

		// The old session is destroyed.
		_, err = st.Sessions().Get(ctx, sess.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = svc.Verify(ctx, sess.ID, "alice", first)
		require.ErrorIs(t, err, domain.ErrNotFound)

		// The fresh code answers the replacement.
		_, err = svc.Verify(ctx, replacement.ID, "alice", sends[1].Code)
		require.NoError(t, err)
	})

	t.Run("CarriesStepUpContext", func(t *testing.T) {
		var sender delivery.CaptureSender
		svc, _ := newSessionService(&sender)

		sess, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
			ActionType:  domain.ActionPayment,
			Amount:      5000,
			Currency:    "USD",
		})
		require.NoError(t, err)

		replacement, err := svc.Resend(ctx, sess.ID, "alice")
		require.NoError(t, err)
		require.Equal(t, domain.ActionPayment, replacement.ActionType)
		require.Equal(t, 5000.0, replacement.Amount)
		require.Equal(t, "USD", replacement.Currency)
	})

	t.Run("LockedSubjectCannotResend", func(t *testing.T) {
		var sender delivery.CaptureSender
		svc, st := newSessionService(&sender)

		sess, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
		})
		require.NoError(t, err)

		require.NoError(t, st.Lockouts().Upsert(ctx, domain.LockoutRecord{
			SubjectID:   "alice",
			SessionID:   "other-session",
			LockedUntil: time.Now().Add(10 * time.Minute),
		}))

		_, err = svc.Resend(ctx, sess.ID, "alice")
		require.ErrorIs(t, err, domain.ErrLocked)
	})

	t.Run("ForeignSessionIsNotFound", func(t *testing.T) {
		var sender delivery.CaptureSender
		svc, st := newSessionService(&sender)

		sess, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
		})
		require.NoError(t, err)

		_, err = svc.Resend(ctx, sess.ID, "mallory")
		require.ErrorIs(t, err, domain.ErrNotFound)

		// The owner's session is untouched.
		_, err = st.Sessions().Get(ctx, sess.ID)
		require.NoError(t, err)
	})

	t.Run("UnknownSessionIsNotFound", func(t *testing.T) {
		svc, _ := newSessionService(&delivery.CaptureSender{})
		_, err := svc.Resend(ctx, "never-existed", "alice")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("DestroysOwnSession", func(t *testing.T) {
		var sender delivery.CaptureSender
		svc, _ := newSessionService(&sender)

		sess, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Cancel(ctx, sess.ID, "alice"))
		_, err = svc.Verify(ctx, sess.ID, "alice", lastCode(t, &sender))
		require.ErrorIs(t, err, domain.ErrNotFound)

		// Cancelling again is a no-op.
		require.NoError(t, svc.Cancel(ctx, sess.ID, "alice"))
	})

	t.Run("ForeignSessionSurvives", func(t *testing.T) {
		var sender delivery.CaptureSender
		svc, st := newSessionService(&sender)

		sess, err := svc.Initiate(ctx, InitiateParams{
			SubjectID:   "alice",
			Method:      domain.MethodSMS,
			Destination: "+15551234567",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Cancel(ctx, sess.ID, "mallory"))

		_, err = st.Sessions().Get(ctx, sess.ID)
		require.NoError(t, err)
	})
}

// Guards against accidentally widening the store error surface: service
// failures presented to callers are domain failures, not store sentinels.
func TestVerifyNeverLeaksStoreErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSessionService(&delivery.CaptureSender{})

	_, err := svc.Verify(ctx, "missing", "alice", "123456")
	require.NotErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
