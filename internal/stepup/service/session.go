package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eventia/stepup/internal/stepup/audit"
	"github.com/eventia/stepup/internal/stepup/delivery"
	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/internal/stepup/store"
	"github.com/eventia/stepup/pkg/cryptox"
	"github.com/eventia/stepup/pkg/idx"
	"github.com/eventia/stepup/pkg/otpx"
	"github.com/eventia/stepup/pkg/slogx"
)

const (
	// SessionValidity is how long a challenge stays answerable.
	SessionValidity = 5 * time.Minute

	// MaxAttempts is the number of wrong codes a session absorbs before the
	// subject is locked out.
	MaxAttempts = 5

	// LockoutDuration is how long a subject stays blocked after exhausting
	// their attempts.
	LockoutDuration = 30 * time.Minute
)

// ErrUnknownMethod is returned when an initiate request names a challenge
// method the service does not support.
var ErrUnknownMethod = errors.New("unknown challenge method")

// SessionService drives the verification session lifecycle: initiate a
// challenge, verify or resend it, cancel it, and promote exhausted sessions
// into lockouts.
type SessionService struct {
	Store   store.Store
	Sender  delivery.Sender
	Auditor audit.Auditor
}

// InitiateParams describes a new challenge. The action fields are optional
// step-up context carried through to the receipt on completion.
type InitiateParams struct {
	SubjectID   string
	Method      domain.Method
	Destination string // required for sms

	ActionType domain.ActionType
	Amount     float64
	Currency   string
}

// Initiate creates a challenge session for the subject and, for sms, delivers
// the code. The session is only persisted once delivery has succeeded, so a
// gateway outage never strands undeliverable sessions.
//
// Fails with domain.ErrLocked while the subject is locked out and with
// domain.ErrSetupRequired for totp challenges without an active enrollment.
func (s *SessionService) Initiate(ctx context.Context, p InitiateParams) (domain.VerificationSession, error) {
	if !p.Method.Valid() {
		return domain.VerificationSession{}, fmt.Errorf("%w: %q", ErrUnknownMethod, p.Method)
	}

	now := time.Now().UTC()

	if _, err := s.Store.Lockouts().ActiveBySubject(ctx, p.SubjectID, now); err == nil {
		return domain.VerificationSession{}, domain.ErrLocked
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.VerificationSession{}, fmt.Errorf("failed to check lockout: %w", err)
	}

	sess := domain.VerificationSession{
		ID:         idx.New().String(),
		SubjectID:  p.SubjectID,
		Method:     p.Method,
		ActionType: p.ActionType,
		Amount:     p.Amount,
		Currency:   p.Currency,
		CreatedAt:  now,
		ExpiresAt:  now.Add(SessionValidity),
	}

	switch p.Method {
	case domain.MethodSMS:
		code, err := cryptox.GenerateNumericCode(otpx.Digits)
		if err != nil {
			return domain.VerificationSession{}, fmt.Errorf("failed to generate code: %w", err)
		}
		hash, err := cryptox.HashCode(code)
		if err != nil {
			return domain.VerificationSession{}, fmt.Errorf("failed to hash code: %w", err)
		}
		sess.CodeHash = hash
		sess.Destination = p.Destination

		if err := s.Sender.Send(ctx, p.Destination, code); err != nil {
			return domain.VerificationSession{}, err
		}

	case domain.MethodTOTP:
		enrollment, err := s.Store.Enrollments().Get(ctx, p.SubjectID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && !enrollment.Active()) {
			return domain.VerificationSession{}, domain.ErrSetupRequired
		}
		if err != nil {
			return domain.VerificationSession{}, fmt.Errorf("failed to load enrollment: %w", err)
		}
	}

	if err := s.Store.Sessions().Create(ctx, sess); err != nil {
		return domain.VerificationSession{}, fmt.Errorf("failed to create session: %w", err)
	}

	s.Auditor.Record(ctx, p.SubjectID, domain.AuditChallengeInitiated, map[string]any{
		"session_id": sess.ID,
		"method":     string(p.Method),
	})
	slogx.FromContext(ctx).Info("challenge initiated",
		slog.String("session_id", sess.ID),
		slog.String("method", string(p.Method)),
	)
	return sess, nil
}

// Verify checks a submitted code against the subject's session. On success
// the session is destroyed (single use) and returned so callers can act on
// its step-up context. On a wrong code the attempt counter is bumped
// atomically; the attempt that exhausts the budget promotes the session into
// a subject-wide lockout and reports domain.ErrLocked, as does every later
// call against the destroyed session. A session belonging to another subject
// is indistinguishable from an unknown one, so one subject can never burn
// another's attempts.
func (s *SessionService) Verify(ctx context.Context, sessionID, subjectID, code string) (domain.VerificationSession, error) {
	now := time.Now().UTC()

	sess, err := s.Store.Sessions().Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.VerificationSession{}, s.missingSessionFailure(ctx, sessionID, now)
	}
	if err != nil {
		return domain.VerificationSession{}, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.SubjectID != subjectID {
		return domain.VerificationSession{}, domain.ErrNotFound
	}

	if sess.Expired(now) {
		if err := s.Store.Sessions().Delete(ctx, sessionID); err != nil {
			return domain.VerificationSession{}, fmt.Errorf("failed to discard expired session: %w", err)
		}
		return domain.VerificationSession{}, domain.ErrExpired
	}

	if _, err := s.Store.Lockouts().ActiveBySubject(ctx, sess.SubjectID, now); err == nil {
		return domain.VerificationSession{}, domain.ErrLocked
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.VerificationSession{}, fmt.Errorf("failed to check lockout: %w", err)
	}

	ok, err := s.checkCode(ctx, sess, code, now)
	if err != nil {
		return domain.VerificationSession{}, err
	}
	if !ok {
		return domain.VerificationSession{}, s.recordFailedAttempt(ctx, sess, now)
	}

	if err := s.Store.Sessions().Delete(ctx, sessionID); err != nil {
		return domain.VerificationSession{}, fmt.Errorf("failed to consume session: %w", err)
	}

	slogx.FromContext(ctx).Info("challenge verified",
		slog.String("session_id", sess.ID),
		slog.String("method", string(sess.Method)),
	)
	return sess, nil
}

// missingSessionFailure distinguishes "this session triggered a lockout that
// is still in force" from a plain unknown or consumed session.
func (s *SessionService) missingSessionFailure(ctx context.Context, sessionID string, now time.Time) error {
	lockout, err := s.Store.Lockouts().BySession(ctx, sessionID)
	if err == nil && lockout.Active(now) {
		return domain.ErrLocked
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to check lockout: %w", err)
	}
	return domain.ErrNotFound
}

func (s *SessionService) checkCode(ctx context.Context, sess domain.VerificationSession, code string, now time.Time) (bool, error) {
	switch sess.Method {
	case domain.MethodSMS:
		err := cryptox.VerifyCode(code, sess.CodeHash)
		if errors.Is(err, cryptox.ErrCodeMismatch) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to verify code: %w", err)
		}
		return true, nil

	case domain.MethodTOTP:
		enrollment, err := s.Store.Enrollments().Get(ctx, sess.SubjectID)
		if errors.Is(err, store.ErrNotFound) {
			return false, domain.ErrSetupRequired
		}
		if err != nil {
			return false, fmt.Errorf("failed to load enrollment: %w", err)
		}
		if !enrollment.Active() {
			return false, domain.ErrSetupRequired
		}
		return otpx.ValidateAt(enrollment.Secret, code, now)

	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownMethod, sess.Method)
	}
}

// recordFailedAttempt bumps the counter and, when the budget is exhausted,
// promotes the session into a lockout. The increment is atomic in the store,
// so racing wrong guesses cannot consume the same attempt twice.
func (s *SessionService) recordFailedAttempt(ctx context.Context, sess domain.VerificationSession, now time.Time) error {
	updated, err := s.Store.Sessions().IncrementAttempts(ctx, sess.ID)
	if errors.Is(err, store.ErrNotFound) {
		// A racing attempt consumed or promoted the session first.
		return s.missingSessionFailure(ctx, sess.ID, now)
	}
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	if updated.Attempts < MaxAttempts {
		s.Auditor.Record(ctx, sess.SubjectID, domain.AuditVerificationFailed, map[string]any{
			"session_id": sess.ID,
			"attempts":   updated.Attempts,
		})
		return domain.NewInvalidCode(MaxAttempts - updated.Attempts)
	}

	lockout := domain.LockoutRecord{
		SubjectID:   sess.SubjectID,
		SessionID:   sess.ID,
		Reason:      domain.LockoutReasonMaxAttempts,
		LockedUntil: now.Add(LockoutDuration),
		CreatedAt:   now,
	}
	if err := s.Store.Lockouts().Upsert(ctx, lockout); err != nil {
		return fmt.Errorf("failed to record lockout: %w", err)
	}
	if err := s.Store.Sessions().Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to discard locked session: %w", err)
	}

	s.Auditor.Record(ctx, sess.SubjectID, domain.AuditLockoutTriggered, map[string]any{
		"session_id":   sess.ID,
		"locked_until": lockout.LockedUntil,
	})
	slogx.FromContext(ctx).Warn("subject locked out",
		slog.String("subject_id", sess.SubjectID),
		slog.String("session_id", sess.ID),
		slog.Time("locked_until", lockout.LockedUntil),
	)
	return domain.ErrLocked
}

// Resend replaces a pending sms session with a fresh one for the same
// subject and destination: the old session is destroyed and initiation runs
// again, so the replacement gets a new id, a new code, a full validity
// window, and a clean attempt counter, and it goes through the same lockout
// check as any other initiation.
func (s *SessionService) Resend(ctx context.Context, sessionID, subjectID string) (domain.VerificationSession, error) {
	now := time.Now().UTC()

	sess, err := s.Store.Sessions().Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.VerificationSession{}, s.missingSessionFailure(ctx, sessionID, now)
	}
	if err != nil {
		return domain.VerificationSession{}, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.SubjectID != subjectID {
		return domain.VerificationSession{}, domain.ErrNotFound
	}
	if sess.Expired(now) {
		return domain.VerificationSession{}, domain.ErrExpired
	}
	if sess.Method != domain.MethodSMS {
		return domain.VerificationSession{}, fmt.Errorf("%w: resend only applies to sms sessions", ErrUnknownMethod)
	}

	if err := s.Store.Sessions().Delete(ctx, sessionID); err != nil {
		return domain.VerificationSession{}, fmt.Errorf("failed to discard replaced session: %w", err)
	}

	replacement, err := s.Initiate(ctx, InitiateParams{
		SubjectID:   sess.SubjectID,
		Method:      sess.Method,
		Destination: sess.Destination,
		ActionType:  sess.ActionType,
		Amount:      sess.Amount,
		Currency:    sess.Currency,
	})
	if err != nil {
		return domain.VerificationSession{}, err
	}

	slogx.FromContext(ctx).Info("challenge reissued",
		slog.String("session_id", sessionID),
		slog.String("replacement_id", replacement.ID),
	)
	return replacement, nil
}

// Cancel destroys a pending session belonging to the subject. Cancelling an
// unknown, already consumed, or foreign session is not an error; it just
// does nothing.
func (s *SessionService) Cancel(ctx context.Context, sessionID, subjectID string) error {
	sess, err := s.Store.Sessions().Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if sess.SubjectID != subjectID {
		return nil
	}

	if err := s.Store.Sessions().Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to cancel session: %w", err)
	}
	return nil
}
