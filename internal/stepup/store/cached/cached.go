// Package cached wraps a store with a read-through cache over the session
// repository. Challenge sessions are read on every verify attempt, so the hot
// path is served from memory while the durable store stays authoritative:
// every mutation writes through and drops the cached copy.
package cached

import (
	"context"
	"sync"
	"time"

	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/internal/stepup/store"
)

type Store struct {
	store.Store

	mu       sync.RWMutex
	sessions map[string]domain.VerificationSession
}

// NewStore decorates the given durable store.
func NewStore(durable store.Store) *Store {
	return &Store{
		Store:    durable,
		sessions: make(map[string]domain.VerificationSession),
	}
}

func (s *Store) Sessions() store.Sessions {
	return &sessionsRepo{cache: s, inner: s.Store.Sessions()}
}

func (s *Store) get(id string) (domain.VerificationSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Store) put(sess domain.VerificationSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess
}

func (s *Store) invalidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

func (s *Store) invalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.sessions)
}

type sessionsRepo struct {
	cache *Store
	inner store.Sessions
}

func (r *sessionsRepo) Create(ctx context.Context, sess domain.VerificationSession) error {
	if err := r.inner.Create(ctx, sess); err != nil {
		return err
	}
	r.cache.put(sess)
	return nil
}

func (r *sessionsRepo) Get(ctx context.Context, id string) (domain.VerificationSession, error) {
	if sess, ok := r.cache.get(id); ok {
		return sess, nil
	}
	sess, err := r.inner.Get(ctx, id)
	if err != nil {
		return domain.VerificationSession{}, err
	}
	r.cache.put(sess)
	return sess, nil
}

func (r *sessionsRepo) IncrementAttempts(ctx context.Context, id string) (domain.VerificationSession, error) {
	// The counter mutates in the durable store; the cache takes the value the
	// store returns so concurrent increments never serve a stale count.
	sess, err := r.inner.IncrementAttempts(ctx, id)
	if err != nil {
		r.cache.invalidate(id)
		return domain.VerificationSession{}, err
	}
	r.cache.put(sess)
	return sess, nil
}

func (r *sessionsRepo) Delete(ctx context.Context, id string) error {
	r.cache.invalidate(id)
	return r.inner.Delete(ctx, id)
}

func (r *sessionsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	r.cache.invalidateAll()
	return r.inner.DeleteExpired(ctx, now)
}

var _ store.Store = (*Store)(nil)
