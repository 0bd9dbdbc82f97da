// Package memory implements the store on in-process maps. It backs unit
// tests and local development; the mongo driver is the production store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/internal/stepup/store"
)

type Store struct {
	mu          sync.RWMutex
	sessions    map[string]domain.VerificationSession
	lockouts    map[string]domain.LockoutRecord // keyed by subject id
	devices     map[string]domain.TrustedDevice // keyed by subject id + "/" + device id
	receipts    []domain.AuthorizedAction
	enrollments map[string]domain.TOTPEnrollment
	events      []domain.AuditEvent
}

func NewStore() *Store {
	return &Store{
		sessions:    make(map[string]domain.VerificationSession),
		lockouts:    make(map[string]domain.LockoutRecord),
		devices:     make(map[string]domain.TrustedDevice),
		enrollments: make(map[string]domain.TOTPEnrollment),
	}
}

func (s *Store) Sessions() store.Sessions       { return &sessionsRepo{s} }
func (s *Store) Lockouts() store.Lockouts       { return &lockoutsRepo{s} }
func (s *Store) Devices() store.Devices         { return &devicesRepo{s} }
func (s *Store) Receipts() store.Receipts       { return &receiptsRepo{s} }
func (s *Store) Enrollments() store.Enrollments { return &enrollmentsRepo{s} }
func (s *Store) AuditEvents() store.AuditEvents { return &auditEventsRepo{s} }

func (s *Store) ApplyMigrations() error          { return nil }
func (s *Store) Ping(ctx context.Context) error  { return nil }
func (s *Store) Close(ctx context.Context) error { return nil }

type sessionsRepo struct{ s *Store }

func (r *sessionsRepo) Create(ctx context.Context, sess domain.VerificationSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[sess.ID]; ok {
		return store.ErrAlreadyExists
	}
	r.s.sessions[sess.ID] = sess
	return nil
}

func (r *sessionsRepo) Get(ctx context.Context, id string) (domain.VerificationSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sess, ok := r.s.sessions[id]
	if !ok {
		return domain.VerificationSession{}, store.ErrNotFound
	}
	return sess, nil
}

func (r *sessionsRepo) IncrementAttempts(ctx context.Context, id string) (domain.VerificationSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sess, ok := r.s.sessions[id]
	if !ok {
		return domain.VerificationSession{}, store.ErrNotFound
	}
	sess.Attempts++
	r.s.sessions[id] = sess
	return sess, nil
}

func (r *sessionsRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, id)
	return nil
}

func (r *sessionsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, sess := range r.s.sessions {
		if sess.Expired(now) {
			delete(r.s.sessions, id)
		}
	}
	return nil
}

type lockoutsRepo struct{ s *Store }

func (r *lockoutsRepo) Upsert(ctx context.Context, l domain.LockoutRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.lockouts[l.SubjectID] = l
	return nil
}

func (r *lockoutsRepo) ActiveBySubject(ctx context.Context, subjectID string, now time.Time) (domain.LockoutRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.lockouts[subjectID]
	if !ok || !l.Active(now) {
		return domain.LockoutRecord{}, store.ErrNotFound
	}
	return l, nil
}

func (r *lockoutsRepo) BySession(ctx context.Context, sessionID string) (domain.LockoutRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, l := range r.s.lockouts {
		if l.SessionID == sessionID {
			return l, nil
		}
	}
	return domain.LockoutRecord{}, store.ErrNotFound
}

func (r *lockoutsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for subject, l := range r.s.lockouts {
		if !l.Active(now) {
			delete(r.s.lockouts, subject)
		}
	}
	return nil
}

type devicesRepo struct{ s *Store }

func deviceKey(subjectID, deviceID string) string { return subjectID + "/" + deviceID }

func (r *devicesRepo) Upsert(ctx context.Context, d domain.TrustedDevice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.devices[deviceKey(d.SubjectID, d.DeviceID)] = d
	return nil
}

func (r *devicesRepo) Get(ctx context.Context, subjectID, deviceID string) (domain.TrustedDevice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.devices[deviceKey(subjectID, deviceID)]
	if !ok {
		return domain.TrustedDevice{}, store.ErrNotFound
	}
	return d, nil
}

func (r *devicesRepo) ListActive(ctx context.Context, subjectID string, now time.Time) ([]domain.TrustedDevice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var devices []domain.TrustedDevice
	for _, d := range r.s.devices {
		if d.SubjectID == subjectID && d.Trusted(now) {
			devices = append(devices, d)
		}
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].TrustedAt.After(devices[j].TrustedAt)
	})
	return devices, nil
}

func (r *devicesRepo) Delete(ctx context.Context, subjectID, deviceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.devices, deviceKey(subjectID, deviceID))
	return nil
}

func (r *devicesRepo) DeleteAll(ctx context.Context, subjectID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key, d := range r.s.devices {
		if d.SubjectID == subjectID {
			delete(r.s.devices, key)
		}
	}
	return nil
}

func (r *devicesRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key, d := range r.s.devices {
		if !d.Trusted(now) {
			delete(r.s.devices, key)
		}
	}
	return nil
}

type receiptsRepo struct{ s *Store }

func (r *receiptsRepo) Create(ctx context.Context, a domain.AuthorizedAction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.receipts = append(r.s.receipts, a)
	return nil
}

func (r *receiptsRepo) LatestValid(ctx context.Context, subjectID string, action domain.ActionType, now time.Time) (domain.AuthorizedAction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var (
		best  domain.AuthorizedAction
		found bool
	)
	for _, a := range r.s.receipts {
		if a.SubjectID != subjectID || a.ActionType != action || !a.Valid(now) {
			continue
		}
		if !found || a.AuthorizedAt.After(best.AuthorizedAt) {
			best, found = a, true
		}
	}
	if !found {
		return domain.AuthorizedAction{}, store.ErrNotFound
	}
	return best, nil
}

func (r *receiptsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.receipts[:0]
	for _, a := range r.s.receipts {
		if a.Valid(now) {
			kept = append(kept, a)
		}
	}
	r.s.receipts = kept
	return nil
}

type enrollmentsRepo struct{ s *Store }

func (r *enrollmentsRepo) Upsert(ctx context.Context, e domain.TOTPEnrollment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.enrollments[e.SubjectID] = e
	return nil
}

func (r *enrollmentsRepo) Get(ctx context.Context, subjectID string) (domain.TOTPEnrollment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.enrollments[subjectID]
	if !ok {
		return domain.TOTPEnrollment{}, store.ErrNotFound
	}
	return e, nil
}

func (r *enrollmentsRepo) Activate(ctx context.Context, subjectID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.enrollments[subjectID]
	if !ok {
		return store.ErrNotFound
	}
	e.ActivatedAt = &at
	r.s.enrollments[subjectID] = e
	return nil
}

func (r *enrollmentsRepo) Delete(ctx context.Context, subjectID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.enrollments, subjectID)
	return nil
}

type auditEventsRepo struct{ s *Store }

func (r *auditEventsRepo) Append(ctx context.Context, ev domain.AuditEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.events = append(r.s.events, ev)
	return nil
}

func (r *auditEventsRepo) ListBySubject(ctx context.Context, subjectID string, limit int) ([]domain.AuditEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	var events []domain.AuditEvent
	for i := len(r.s.events) - 1; i >= 0 && len(events) < limit; i-- {
		if r.s.events[i].SubjectID == subjectID {
			events = append(events, r.s.events[i])
		}
	}
	return events, nil
}
