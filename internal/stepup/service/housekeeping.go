package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/eventia/stepup/internal/stepup/store"
)

// HousekeepingService periodically removes expired sessions, lockouts,
// trusted devices, and receipts so the collections don't grow without bound.
// Expiry is still enforced lazily on every read; the sweep is purely about
// storage.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the sweeper. A non-positive interval
// defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", slog.Duration("interval", s.Interval))
}

// Stop shuts the worker down, waiting for any in-progress sweep.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep once at startup so a restart doesn't wait a full interval.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep deletes expired records. Each deletion is independent; one failing
// collection doesn't stop the others.
func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now().UTC()

	if err := s.Store.Sessions().DeleteExpired(ctx, now); err != nil {
		s.Logger.Error("failed to sweep sessions", slog.String("error", err.Error()))
	}
	if err := s.Store.Lockouts().DeleteExpired(ctx, now); err != nil {
		s.Logger.Error("failed to sweep lockouts", slog.String("error", err.Error()))
	}
	if err := s.Store.Devices().DeleteExpired(ctx, now); err != nil {
		s.Logger.Error("failed to sweep devices", slog.String("error", err.Error()))
	}
	if err := s.Store.Receipts().DeleteExpired(ctx, now); err != nil {
		s.Logger.Error("failed to sweep receipts", slog.String("error", err.Error()))
	}

	s.Logger.Debug("housekeeping sweep complete")
}
