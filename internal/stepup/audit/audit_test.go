package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/internal/stepup/store/drivers/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorderPersistsEvents(t *testing.T) {
	t.Parallel()

	s := memory.NewStore()
	r := NewRecorder(s.AuditEvents(), discardLogger())

	r.Record(context.Background(), "alice", domain.AuditChallengeInitiated, map[string]any{"method": "sms"})
	r.Record(context.Background(), "alice", domain.AuditLockoutTriggered, nil)
	r.Stop()

	events, err := s.AuditEvents().ListBySubject(context.Background(), "alice", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	byType := map[string]domain.AuditEvent{}
	for _, ev := range events {
		byType[ev.EventType] = ev
	}
	require.Equal(t, domain.SeverityInfo, byType[domain.AuditChallengeInitiated].Severity)
	require.Equal(t, domain.SeverityCritical, byType[domain.AuditLockoutTriggered].Severity)
	require.NotEmpty(t, byType[domain.AuditChallengeInitiated].ID)
	require.WithinDuration(t, time.Now(), byType[domain.AuditChallengeInitiated].At, time.Minute)
}

func TestSeverityFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, domain.SeverityCritical, severityFor(domain.AuditLockoutTriggered))
	require.Equal(t, domain.SeverityWarning, severityFor(domain.AuditVerificationFailed))
	require.Equal(t, domain.SeverityWarning, severityFor(domain.AuditDeviceRevoked))
	require.Equal(t, domain.SeverityInfo, severityFor(domain.AuditDeviceTrusted))
	require.Equal(t, domain.SeverityInfo, severityFor(domain.AuditActionAuthorized))
}

func TestRecordNeverBlocks(t *testing.T) {
	t.Parallel()

	s := memory.NewStore()
	r := NewRecorder(s.AuditEvents(), discardLogger())
	defer r.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < defaultQueueSize*4; i++ {
			r.Record(context.Background(), "alice", domain.AuditVerificationFailed, nil)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Record blocked on a full queue")
	}
}
