package http

import (
	"net/http"
	"time"

	"github.com/eventia/stepup/internal/stepup/store"
	"github.com/eventia/stepup/pkg/httpx"
	"github.com/eventia/stepup/pkg/slogx"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always returns 200 OK while the process is running, with uptime and version.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Returns 200 when the backing store is reachable, 503 otherwise.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{Database: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}

// AuditHandler serves the subject's own security event history.
type AuditHandler struct {
	Events store.AuditEvents
}

// HandleList handles GET /v1/audit
//
//	@Summary		List security events
//	@Description	Returns the authenticated subject's recent security events, newest first. At most 50 are returned.
//	@Tags			Audit
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		AuditEventResponse	"Recent events"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/audit [get].
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	events, err := h.Events.ListBySubject(ctx, subjectID, 50)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list audit events", "err", err)
		writeServerError(w)
		return
	}

	resp := make([]AuditEventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, AuditEventResponse{
			ID:        ev.ID,
			EventType: ev.EventType,
			Severity:  ev.Severity,
			Metadata:  ev.Metadata,
			At:        ev.At,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
