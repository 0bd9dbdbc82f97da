package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventia/stepup/internal/stepup/audit"
	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/internal/stepup/store"
)

// DefaultTrustDuration is how long a trusted device stays exempt from
// challenges.
const DefaultTrustDuration = 30 * 24 * time.Hour

// DeviceService manages the trusted-device registry. Device identity is the
// caller's concern; the registry only records which subject/device pairs are
// currently exempt.
type DeviceService struct {
	Store         store.Store
	Auditor       audit.Auditor
	TrustDuration time.Duration
}

func (s *DeviceService) trustDuration() time.Duration {
	if s.TrustDuration > 0 {
		return s.TrustDuration
	}
	return DefaultTrustDuration
}

// Trust registers or refreshes a device exemption. Re-trusting an existing
// device restarts its window.
func (s *DeviceService) Trust(ctx context.Context, subjectID, deviceID, name string) (domain.TrustedDevice, error) {
	now := time.Now().UTC()
	device := domain.TrustedDevice{
		SubjectID: subjectID,
		DeviceID:  deviceID,
		Name:      name,
		TrustedAt: now,
		ExpiresAt: now.Add(s.trustDuration()),
	}
	if err := s.Store.Devices().Upsert(ctx, device); err != nil {
		return domain.TrustedDevice{}, fmt.Errorf("failed to trust device: %w", err)
	}

	s.Auditor.Record(ctx, subjectID, domain.AuditDeviceTrusted, map[string]any{
		"device_id": deviceID,
	})
	return device, nil
}

// IsTrusted reports whether the pair has an unexpired exemption. Expired rows
// count as untrusted even before housekeeping sweeps them.
func (s *DeviceService) IsTrusted(ctx context.Context, subjectID, deviceID string) (bool, error) {
	device, err := s.Store.Devices().Get(ctx, subjectID, deviceID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up device: %w", err)
	}
	return device.Trusted(time.Now().UTC()), nil
}

// List returns the subject's active devices, most recently trusted first.
func (s *DeviceService) List(ctx context.Context, subjectID string) ([]domain.TrustedDevice, error) {
	devices, err := s.Store.Devices().ListActive(ctx, subjectID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

// Revoke withdraws a single device's exemption. Revoking an unknown device is
// not an error.
func (s *DeviceService) Revoke(ctx context.Context, subjectID, deviceID string) error {
	if err := s.Store.Devices().Delete(ctx, subjectID, deviceID); err != nil {
		return fmt.Errorf("failed to revoke device: %w", err)
	}
	s.Auditor.Record(ctx, subjectID, domain.AuditDeviceRevoked, map[string]any{
		"device_id": deviceID,
	})
	return nil
}

// RevokeAll withdraws every exemption the subject holds, typically after a
// credential change or suspected compromise.
func (s *DeviceService) RevokeAll(ctx context.Context, subjectID string) error {
	if err := s.Store.Devices().DeleteAll(ctx, subjectID); err != nil {
		return fmt.Errorf("failed to revoke devices: %w", err)
	}
	s.Auditor.Record(ctx, subjectID, domain.AuditDeviceRevoked, map[string]any{
		"device_id": "all",
	})
	return nil
}
