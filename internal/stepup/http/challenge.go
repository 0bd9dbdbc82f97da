package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/internal/stepup/service"
	"github.com/eventia/stepup/pkg/httpx"
	"github.com/eventia/stepup/pkg/slogx"
)

// ChallengeHandler serves the verification session endpoints.
type ChallengeHandler struct {
	Sessions *service.SessionService
	Gate     *service.GateService
	Devices  *service.DeviceService
}

// HandleInitiate handles POST /v1/challenges
//
//	@Summary		Start a verification challenge
//	@Description	Creates a challenge session for the authenticated subject. For sms, a one-time code is delivered to the destination; for totp, the subject answers from their enrolled authenticator.
//	@Tags			Challenges
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		InitiateChallengeRequest	true	"Challenge settings"
//	@Success		201		{object}	ChallengeResponse			"Pending challenge"
//	@Failure		400		{object}	httpx.ErrorResponse			"Invalid request"
//	@Failure		401		{object}	httpx.ErrorResponse			"Invalid or missing access token"
//	@Failure		409		{object}	httpx.ErrorResponse			"Authenticator setup required"
//	@Failure		423		{object}	httpx.ErrorResponse			"Subject is locked out"
//	@Failure		502		{object}	httpx.ErrorResponse			"Code delivery failed"
//	@Failure		504		{object}	httpx.ErrorResponse			"Code delivery timed out"
//	@Router			/v1/challenges [post].
func (h *ChallengeHandler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	var req InitiateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	method := domain.Method(req.Method)
	if method == domain.MethodSMS && req.Destination == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "destination is required for sms challenges")
		return
	}

	sess, err := h.Sessions.Initiate(ctx, service.InitiateParams{
		SubjectID:   subjectID,
		Method:      method,
		Destination: req.Destination,
	})
	if err != nil {
		if writeFailure(w, r, err) {
			return
		}
		if errors.Is(err, service.ErrUnknownMethod) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown challenge method")
			return
		}
		log.Error("failed to initiate challenge", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, ChallengeResponse{
		SessionID: sess.ID,
		Method:    string(sess.Method),
		ExpiresAt: sess.ExpiresAt,
	})
}

// HandleVerify handles POST /v1/challenges/{id}/verify
//
//	@Summary		Answer a verification challenge
//	@Description	Checks the submitted code. The session is single use: success destroys it. Wrong codes consume attempts; exhausting them locks the subject out. When the challenge carried step-up context, a receipt is minted and returned.
//	@Tags			Challenges
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Session id"
//	@Param			request	body		VerifyChallengeRequest	true	"Submitted code"
//	@Success		200		{object}	VerifyChallengeResponse	"Verification result"
//	@Failure		400		{object}	httpx.ErrorResponse		"Wrong code (remaining_attempts set)"
//	@Failure		401		{object}	httpx.ErrorResponse		"Invalid or missing access token"
//	@Failure		404		{object}	httpx.ErrorResponse		"Unknown or consumed session"
//	@Failure		410		{object}	httpx.ErrorResponse		"Session expired"
//	@Failure		423		{object}	httpx.ErrorResponse		"Subject is locked out"
//	@Router			/v1/challenges/{id}/verify [post].
func (h *ChallengeHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	var req VerifyChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	sessionID := r.PathValue("id")
	sess, err := h.Sessions.Verify(ctx, sessionID, subjectID, req.Code)
	if err != nil {
		if writeFailure(w, r, err) {
			return
		}
		log.Error("failed to verify challenge", "session_id", sessionID, "err", err)
		writeServerError(w)
		return
	}

	resp := VerifyChallengeResponse{Verified: true}

	// Challenges initiated through the gate carry step-up context; completing
	// one mints the receipt here so the client doesn't need a second call.
	if sess.ActionType != "" {
		amr := domain.AMRSMS
		if sess.Method == domain.MethodTOTP {
			amr = domain.AMRTOTP
		}
		receipt, token, err := h.Gate.MintForSession(ctx, sess, amr)
		if err != nil {
			log.Error("failed to mint receipt", "session_id", sessionID, "err", err)
			writeServerError(w)
			return
		}
		resp.Receipt = receiptResponse(receipt)
		resp.Token = token
	}

	if req.TrustDevice && req.DeviceID != "" {
		if _, err := h.Devices.Trust(ctx, subjectID, req.DeviceID, req.DeviceName); err != nil {
			log.Error("failed to trust device", "device_id", req.DeviceID, "err", err)
		}
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleResend handles POST /v1/challenges/{id}/resend
//
//	@Summary		Resend a challenge code
//	@Description	Destroys the pending sms session and starts a fresh one for the same destination: new session id, new code, full validity window, clean attempt counter. Clients must re-point at the returned session id.
//	@Tags			Challenges
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string				true	"Session id"
//	@Success		201	{object}	ChallengeResponse	"Replacement challenge"
//	@Failure		400	{object}	httpx.ErrorResponse	"Not an sms challenge"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Failure		404	{object}	httpx.ErrorResponse	"Unknown or consumed session"
//	@Failure		410	{object}	httpx.ErrorResponse	"Session expired"
//	@Failure		423	{object}	httpx.ErrorResponse	"Subject is locked out"
//	@Failure		502	{object}	httpx.ErrorResponse	"Code delivery failed"
//	@Router			/v1/challenges/{id}/resend [post].
func (h *ChallengeHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	sessionID := r.PathValue("id")
	replacement, err := h.Sessions.Resend(ctx, sessionID, subjectID)
	if err != nil {
		if writeFailure(w, r, err) {
			return
		}
		if errors.Is(err, service.ErrUnknownMethod) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "resend only applies to sms challenges")
			return
		}
		log.Error("failed to resend code", "session_id", sessionID, "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, ChallengeResponse{
		SessionID: replacement.ID,
		Method:    string(replacement.Method),
		ExpiresAt: replacement.ExpiresAt,
	})
}

// HandleCancel handles DELETE /v1/challenges/{id}
//
//	@Summary		Cancel a challenge
//	@Description	Destroys a pending session belonging to the subject. Idempotent; cancelling an unknown or foreign session succeeds without effect.
//	@Tags			Challenges
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Session id"
//	@Success		204	"Session cancelled"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/challenges/{id} [delete].
func (h *ChallengeHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	if err := h.Sessions.Cancel(ctx, r.PathValue("id"), subjectID); err != nil {
		slogx.FromContext(ctx).Error("failed to cancel session", "err", err)
		writeServerError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func receiptResponse(receipt domain.AuthorizedAction) *ReceiptResponse {
	return &ReceiptResponse{
		ID:           receipt.ID,
		Action:       string(receipt.ActionType),
		Amount:       receipt.Amount,
		Currency:     receipt.Currency,
		AMR:          receipt.AMR,
		AuthorizedAt: receipt.AuthorizedAt,
		ExpiresAt:    receipt.ExpiresAt,
	}
}
