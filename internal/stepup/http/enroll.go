package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eventia/stepup/internal/stepup/service"
	"github.com/eventia/stepup/pkg/httpx"
	"github.com/eventia/stepup/pkg/slogx"
)

// EnrollHandler serves the authenticator enrollment endpoints.
type EnrollHandler struct {
	Enroll *service.EnrollService
}

// HandleEnroll handles POST /v1/totp/enroll
//
//	@Summary		Enroll an authenticator
//	@Description	Provisions a fresh TOTP secret for the authenticated subject and returns it with the otpauth URI and a QR code. The secret is shown exactly once; the enrollment stays pending until activated with a valid code.
//	@Tags			Enrollment
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	EnrollResponse		"Provisioning material"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Failure		409	{object}	httpx.ErrorResponse	"An active enrollment already exists"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/v1/totp/enroll [post].
func (h *EnrollHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	enrollment, err := h.Enroll.Enroll(ctx, subjectID, subjectID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyEnrolled) {
			httpx.WriteError(w, http.StatusConflict, "already_enrolled", "An authenticator is already enrolled; disable it first")
			return
		}
		log.Error("failed to enroll totp", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, EnrollResponse{
		Secret:  enrollment.Secret,
		URI:     enrollment.URI,
		QRCode:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(enrollment.QRPNG),
		Issuer:  enrollment.Issuer,
		Account: enrollment.Account,
	})
}

// HandleActivate handles POST /v1/totp/activate
//
//	@Summary		Activate a pending enrollment
//	@Description	Confirms the enrollment by checking a code from the authenticator. Only active enrollments satisfy totp challenges.
//	@Tags			Enrollment
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	ActivateEnrollmentRequest	true	"Authenticator code"
//	@Success		204		"Enrollment activated"
//	@Failure		400		{object}	httpx.ErrorResponse	"Wrong code"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Failure		409		{object}	httpx.ErrorResponse	"No pending enrollment, or already active"
//	@Router			/v1/totp/activate [post].
func (h *EnrollHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	var req ActivateEnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if err := h.Enroll.Activate(ctx, subjectID, req.Code); err != nil {
		if writeFailure(w, r, err) {
			return
		}
		switch {
		case errors.Is(err, service.ErrInvalidActivationCode):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_code", "The code does not match the pending enrollment")
		case errors.Is(err, service.ErrAlreadyEnrolled):
			httpx.WriteError(w, http.StatusConflict, "already_enrolled", "The enrollment is already active")
		default:
			log.Error("failed to activate enrollment", "err", err)
			writeServerError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable handles DELETE /v1/totp
//
//	@Summary		Disable the authenticator
//	@Description	Removes the subject's enrollment. An active enrollment demands a valid authenticator code; a pending one can be abandoned without it. Later totp challenges fail with setup_required until the subject enrolls again.
//	@Tags			Enrollment
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	DisableEnrollmentRequest	false	"Authenticator code (required while active)"
//	@Success		204		"Enrollment removed"
//	@Failure		400		{object}	httpx.ErrorResponse	"Wrong code"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Failure		409		{object}	httpx.ErrorResponse	"No enrollment to disable"
//	@Router			/v1/totp [delete].
func (h *EnrollHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	var req DisableEnrollmentRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body is optional
	}

	if err := h.Enroll.Disable(ctx, subjectID, req.Code); err != nil {
		if writeFailure(w, r, err) {
			return
		}
		if errors.Is(err, service.ErrInvalidActivationCode) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_code", "A valid authenticator code is required to disable an active enrollment")
			return
		}
		slogx.FromContext(ctx).Error("failed to disable totp", "err", err)
		writeServerError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
