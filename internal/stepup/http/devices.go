package http

import (
	"encoding/json"
	"net/http"

	"github.com/eventia/stepup/internal/stepup/service"
	"github.com/eventia/stepup/pkg/httpx"
	"github.com/eventia/stepup/pkg/slogx"
)

// DevicesHandler serves the trusted-device registry endpoints.
type DevicesHandler struct {
	Devices *service.DeviceService
}

// HandleList handles GET /v1/devices
//
//	@Summary		List trusted devices
//	@Description	Returns the subject's active trusted devices, most recently trusted first.
//	@Tags			Devices
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		DeviceResponse		"Active devices"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/devices [get].
func (h *DevicesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	devices, err := h.Devices.List(ctx, subjectID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list devices", "err", err)
		writeServerError(w)
		return
	}

	resp := make([]DeviceResponse, 0, len(devices))
	for _, d := range devices {
		resp = append(resp, DeviceResponse{
			DeviceID:  d.DeviceID,
			Name:      d.Name,
			TrustedAt: d.TrustedAt,
			ExpiresAt: d.ExpiresAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleTrust handles POST /v1/devices
//
//	@Summary		Trust this device
//	@Description	Registers a device exemption for the subject. Re-trusting an existing device restarts its window. Intended to be called right after a successful verification; most clients use the trust_device flag on verify instead.
//	@Tags			Devices
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TrustDeviceRequest	true	"Device identity"
//	@Success		201		{object}	DeviceResponse		"Registered device"
//	@Failure		400		{object}	httpx.ErrorResponse	"Invalid request"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/devices [post].
func (h *DevicesHandler) HandleTrust(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	var req TrustDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "device_id is required")
		return
	}

	device, err := h.Devices.Trust(ctx, subjectID, req.DeviceID, req.Name)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to trust device", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, DeviceResponse{
		DeviceID:  device.DeviceID,
		Name:      device.Name,
		TrustedAt: device.TrustedAt,
		ExpiresAt: device.ExpiresAt,
	})
}

// HandleRevoke handles DELETE /v1/devices/{id}
//
//	@Summary		Revoke a trusted device
//	@Description	Withdraws a single device's exemption. Idempotent.
//	@Tags			Devices
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Device id"
//	@Success		204	"Device revoked"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/devices/{id} [delete].
func (h *DevicesHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	if err := h.Devices.Revoke(ctx, subjectID, r.PathValue("id")); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke device", "err", err)
		writeServerError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRevokeAll handles DELETE /v1/devices
//
//	@Summary		Revoke all trusted devices
//	@Description	Withdraws every exemption the subject holds.
//	@Tags			Devices
//	@Security		BearerAuth
//	@Success		204	"Devices revoked"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/devices [delete].
func (h *DevicesHandler) HandleRevokeAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	if err := h.Devices.RevokeAll(ctx, subjectID); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke devices", "err", err)
		writeServerError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
