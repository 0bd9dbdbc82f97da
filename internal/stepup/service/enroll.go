package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eventia/stepup/internal/stepup/audit"
	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/internal/stepup/store"
	"github.com/eventia/stepup/pkg/otpx"
	"github.com/eventia/stepup/pkg/qrx"
	"github.com/eventia/stepup/pkg/slogx"
)

var (
	// ErrAlreadyEnrolled is returned when a subject with an active enrollment
	// asks for a new one. Disable first; re-enrollment is how secrets rotate.
	ErrAlreadyEnrolled = errors.New("totp already enrolled")

	// ErrInvalidActivationCode is returned when the code submitted to confirm
	// an enrollment does not match the pending secret.
	ErrInvalidActivationCode = errors.New("invalid activation code")
)

// EnrollService manages authenticator enrollments. An enrollment is pending
// until the subject proves possession of the secret by activating it with a
// valid code.
type EnrollService struct {
	Store   store.Store
	Auditor audit.Auditor
	Issuer  string // issuer label shown in authenticator apps
}

// Enrollment is the provisioning material returned to the subject exactly
// once, at enrollment time. The secret never leaves the service again.
type Enrollment struct {
	Secret  string
	URI     string
	QRPNG   []byte
	Issuer  string
	Account string
}

// Enroll provisions a fresh secret for the subject. A pending (never
// activated) enrollment is silently replaced; an active one must be disabled
// first.
func (s *EnrollService) Enroll(ctx context.Context, subjectID, account string) (Enrollment, error) {
	existing, err := s.Store.Enrollments().Get(ctx, subjectID)
	if err == nil && existing.Active() {
		return Enrollment{}, ErrAlreadyEnrolled
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Enrollment{}, fmt.Errorf("failed to load enrollment: %w", err)
	}

	secret, err := otpx.GenerateSecret()
	if err != nil {
		return Enrollment{}, err
	}

	enrollment := domain.TOTPEnrollment{
		SubjectID: subjectID,
		Secret:    secret,
		Account:   account,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Enrollments().Upsert(ctx, enrollment); err != nil {
		return Enrollment{}, fmt.Errorf("failed to store enrollment: %w", err)
	}

	uri := otpx.ProvisioningURI(s.Issuer, account, secret)
	png, err := qrx.Generate(uri, 0)
	if err != nil {
		return Enrollment{}, fmt.Errorf("failed to render qr code: %w", err)
	}

	slogx.FromContext(ctx).Info("totp enrollment created", slog.String("subject_id", subjectID))
	return Enrollment{
		Secret:  secret,
		URI:     uri,
		QRPNG:   png,
		Issuer:  s.Issuer,
		Account: account,
	}, nil
}

// Activate confirms a pending enrollment with a code from the authenticator.
// Only after activation does the enrollment satisfy totp challenges.
func (s *EnrollService) Activate(ctx context.Context, subjectID, code string) error {
	enrollment, err := s.Store.Enrollments().Get(ctx, subjectID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrSetupRequired
	}
	if err != nil {
		return fmt.Errorf("failed to load enrollment: %w", err)
	}
	if enrollment.Active() {
		return ErrAlreadyEnrolled
	}

	now := time.Now().UTC()
	ok, err := otpx.ValidateAt(enrollment.Secret, code, now)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidActivationCode
	}

	if err := s.Store.Enrollments().Activate(ctx, subjectID, now); err != nil {
		return fmt.Errorf("failed to activate enrollment: %w", err)
	}

	s.Auditor.Record(ctx, subjectID, domain.AuditTOTPEnrolled, nil)
	slogx.FromContext(ctx).Info("totp enrollment activated", slog.String("subject_id", subjectID))
	return nil
}

// Disable removes the subject's enrollment. An active enrollment demands a
// valid code, so a stolen access token alone cannot strip the second factor.
// A pending enrollment can be abandoned without one. Later totp challenges
// fail with setup-required until the subject enrolls again.
func (s *EnrollService) Disable(ctx context.Context, subjectID, code string) error {
	enrollment, err := s.Store.Enrollments().Get(ctx, subjectID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrSetupRequired
	}
	if err != nil {
		return fmt.Errorf("failed to load enrollment: %w", err)
	}

	if enrollment.Active() {
		ok, err := otpx.ValidateAt(enrollment.Secret, code, time.Now().UTC())
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidActivationCode
		}
	}

	if err := s.Store.Enrollments().Delete(ctx, subjectID); err != nil {
		return fmt.Errorf("failed to disable enrollment: %w", err)
	}
	s.Auditor.Record(ctx, subjectID, domain.AuditTOTPDisabled, nil)
	return nil
}
