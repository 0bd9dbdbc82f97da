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

// GateHandler serves the step-up authorization endpoints.
type GateHandler struct {
	Gate *service.GateService
}

// HandleAuthorize handles POST /v1/stepup/authorize
//
//	@Summary		Request authorization for a privileged action
//	@Description	Evaluates what the action demands. Low-risk actions and trusted devices get an immediate receipt; medium-risk payments must be confirmed; everything else gets a challenge session to complete.
//	@Tags			StepUp
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AuthorizeRequest	true	"Action description"
//	@Success		200		{object}	AuthorizeResponse	"Gate decision"
//	@Failure		400		{object}	httpx.ErrorResponse	"Invalid request or unknown currency"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Failure		409		{object}	httpx.ErrorResponse	"Authenticator setup required"
//	@Failure		423		{object}	httpx.ErrorResponse	"Subject is locked out"
//	@Router			/v1/stepup/authorize [post].
func (h *GateHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	var req AuthorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Action == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "action is required")
		return
	}
	if !domain.ActionType(req.Action).Valid() {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown action type")
		return
	}

	res, err := h.Gate.Authorize(ctx, service.AuthorizeParams{
		SubjectID:   subjectID,
		DeviceID:    req.DeviceID,
		Action:      domain.ActionType(req.Action),
		Amount:      req.Amount,
		Currency:    req.Currency,
		Method:      domain.Method(req.Method),
		Destination: req.Destination,
	})
	if err != nil {
		if writeFailure(w, r, err) {
			return
		}
		switch {
		case errors.Is(err, service.ErrUnknownCurrency):
			httpx.WriteError(w, http.StatusBadRequest, "unknown_currency", "The currency is not supported")
		case errors.Is(err, service.ErrUnknownMethod):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown challenge method")
		default:
			log.Error("failed to authorize action", "action", req.Action, "err", err)
			writeServerError(w)
		}
		return
	}

	resp := AuthorizeResponse{
		Requirement: string(res.Requirement),
		SessionID:   res.SessionID,
		Token:       res.Token,
	}
	if res.Receipt != nil {
		resp.Receipt = receiptResponse(*res.Receipt)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleConfirm handles POST /v1/stepup/confirm
//
//	@Summary		Confirm a medium-risk action
//	@Description	Satisfies a confirmation-tier action with an explicit yes and mints the receipt. The requirement is re-evaluated server side; challenge-tier actions cannot be confirmed this way.
//	@Tags			StepUp
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ConfirmRequest		true	"Action description"
//	@Success		200		{object}	AuthorizeResponse	"Minted receipt"
//	@Failure		400		{object}	httpx.ErrorResponse	"Invalid request or unknown currency"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Failure		403		{object}	httpx.ErrorResponse	"Action demands a full challenge"
//	@Router			/v1/stepup/confirm [post].
func (h *GateHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Action == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "action is required")
		return
	}
	if !domain.ActionType(req.Action).Valid() {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown action type")
		return
	}

	receipt, token, err := h.Gate.Confirm(ctx, subjectID, domain.ActionType(req.Action), req.Amount, req.Currency)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownCurrency):
			httpx.WriteError(w, http.StatusBadRequest, "unknown_currency", "The currency is not supported")
		case errors.Is(err, service.ErrConfirmationNotSufficient):
			httpx.WriteError(w, http.StatusForbidden, "challenge_required", "This action demands a full verification challenge")
		default:
			log.Error("failed to confirm action", "action", req.Action, "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthorizeResponse{
		Requirement: string(domain.RequireConfirmation),
		Receipt:     receiptResponse(receipt),
		Token:       token,
	})
}

// HandleComplete handles POST /v1/stepup/complete
//
//	@Summary		Complete a challenge-tier authorization
//	@Description	Verifies the code against the challenge session started by authorize and mints the receipt on success.
//	@Tags			StepUp
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CompleteRequest		true	"Session id and code"
//	@Success		200		{object}	AuthorizeResponse	"Minted receipt"
//	@Failure		400		{object}	httpx.ErrorResponse	"Wrong code (remaining_attempts set)"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Failure		404		{object}	httpx.ErrorResponse	"Unknown or consumed session"
//	@Failure		410		{object}	httpx.ErrorResponse	"Session expired"
//	@Failure		423		{object}	httpx.ErrorResponse	"Subject is locked out"
//	@Router			/v1/stepup/complete [post].
func (h *GateHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "session_id is required")
		return
	}

	receipt, token, err := h.Gate.Complete(ctx, req.SessionID, subjectID, req.Code)
	if err != nil {
		if writeFailure(w, r, err) {
			return
		}
		log.Error("failed to complete authorization", "session_id", req.SessionID, "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthorizeResponse{
		Requirement: string(domain.RequireChallenge),
		Receipt:     receiptResponse(receipt),
		Token:       token,
	})
}

// HandleReceipt handles GET /v1/stepup/receipt
//
//	@Summary		Check for a valid authorization
//	@Description	Returns the subject's most recent unexpired receipt for the action, or 404 when they must verify (again). Receipts are not renewable.
//	@Tags			StepUp
//	@Security		BearerAuth
//	@Produce		json
//	@Param			action	query		string				true	"Action type"
//	@Success		200		{object}	ReceiptResponse		"Valid receipt"
//	@Failure		400		{object}	httpx.ErrorResponse	"Missing action parameter"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Failure		404		{object}	httpx.ErrorResponse	"No valid authorization"
//	@Router			/v1/stepup/receipt [get].
func (h *GateHandler) HandleReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subjectID := httpx.SubjectFromContext(ctx)
	if subjectID == "" {
		writeUnauthorized(w)
		return
	}

	action := r.URL.Query().Get("action")
	if action == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "action query parameter is required")
		return
	}
	if !domain.ActionType(action).Valid() {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown action type")
		return
	}

	receipt, err := h.Gate.HasValidAuthorization(ctx, subjectID, domain.ActionType(action))
	if err != nil {
		if writeFailure(w, r, err) {
			return
		}
		log.Error("failed to look up receipt", "action", action, "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, receiptResponse(receipt))
}
