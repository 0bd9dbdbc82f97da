// Package audit persists security events without ever blocking the operation
// that produced them. Events are queued to a background worker; when the queue
// is full the event is dropped and counted, never waited on.
package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/internal/stepup/store"
	"github.com/eventia/stepup/pkg/idx"
)

// Auditor records security events.
type Auditor interface {
	Record(ctx context.Context, subjectID, eventType string, metadata map[string]any)
}

const defaultQueueSize = 256

// severityFor maps event types to their alerting tier.
func severityFor(eventType string) string {
	switch eventType {
	case domain.AuditLockoutTriggered:
		return domain.SeverityCritical
	case domain.AuditVerificationFailed, domain.AuditDeviceRevoked, domain.AuditTOTPDisabled:
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}

// Recorder is the production Auditor. It owns a single worker goroutine that
// drains the queue into the store and mirrors each event to the logger.
type Recorder struct {
	events  store.AuditEvents
	logger  *slog.Logger
	queue   chan domain.AuditEvent
	done    chan struct{}
	dropped atomic.Int64
}

func NewRecorder(events store.AuditEvents, logger *slog.Logger) *Recorder {
	r := &Recorder{
		events: events,
		logger: logger,
		queue:  make(chan domain.AuditEvent, defaultQueueSize),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Recorder) Record(ctx context.Context, subjectID, eventType string, metadata map[string]any) {
	ev := domain.AuditEvent{
		ID:        idx.New().String(),
		SubjectID: subjectID,
		EventType: eventType,
		Severity:  severityFor(eventType),
		Metadata:  metadata,
		At:        time.Now().UTC(),
	}

	select {
	case r.queue <- ev:
	default:
		r.dropped.Add(1)
		r.logger.Warn("audit queue full, event dropped",
			slog.String("event_type", eventType),
			slog.Int64("dropped_total", r.dropped.Load()),
		)
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Stop drains the queue and stops the worker. Record calls made after Stop
// panic; callers stop producing before shutting the recorder down.
func (r *Recorder) Stop() {
	close(r.queue)
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)

	for ev := range r.queue {
		level := slog.LevelInfo
		switch ev.Severity {
		case domain.SeverityWarning:
			level = slog.LevelWarn
		case domain.SeverityCritical:
			level = slog.LevelError
		}
		r.logger.Log(context.Background(), level, "audit event",
			slog.String("event_id", ev.ID),
			slog.String("subject_id", ev.SubjectID),
			slog.String("event_type", ev.EventType),
			slog.String("severity", ev.Severity),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.events.Append(ctx, ev); err != nil {
			r.logger.Error("persist audit event",
				slog.String("event_id", ev.ID),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}
}

// Nop discards every event. Used in tests that don't assert on audit output.
type Nop struct{}

func (Nop) Record(ctx context.Context, subjectID, eventType string, metadata map[string]any) {}
