package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eventia/stepup/internal/stepup/audit"
	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/internal/stepup/store"
	"github.com/eventia/stepup/pkg/idx"
	"github.com/eventia/stepup/pkg/slogx"
)

const (
	// ReceiptValidity is how long an authorization receipt can be consumed
	// before the subject must verify again. Receipts are not renewable.
	ReceiptValidity = 15 * time.Minute

	// DefaultLowThreshold is the amount (in the reference currency) below
	// which payments proceed without any step.
	DefaultLowThreshold = 100

	// DefaultHighThreshold is the amount at or above which payments demand a
	// full passcode challenge.
	DefaultHighThreshold = 1000
)

var (
	// ErrUnknownCurrency is returned when an amount arrives in a currency the
	// gate has no conversion rate for. Unknown currencies are rejected rather
	// than waved through at face value.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrConfirmationNotSufficient is returned when Confirm is called for an
	// action whose requirement is a full challenge.
	ErrConfirmationNotSufficient = errors.New("confirmation does not satisfy this action")

	// ErrInvalidReceipt is returned when a receipt token fails verification.
	ErrInvalidReceipt = errors.New("invalid receipt token")
)

// defaultRates converts supported currencies into the reference currency
// (USD). Rates are approximate; thresholds are coarse risk bands, not
// accounting.
var defaultRates = map[string]float64{
	"USD": 1.0,
	"EUR": 1.09,
	"GBP": 1.27,
	"AUD": 0.66,
	"CAD": 0.73,
	"JPY": 0.0068,
}

// GateService decides what verification a privileged action demands and mints
// the short-lived receipts that let it proceed.
type GateService struct {
	Store    store.Store
	Sessions *SessionService
	Devices  *DeviceService
	Auditor  audit.Auditor

	// ReceiptSecret signs receipt tokens (HS256).
	ReceiptSecret []byte

	// Thresholds in the reference currency. Zero values fall back to the
	// defaults.
	LowThreshold  float64
	HighThreshold float64

	// Rates overrides the built-in conversion table when non-nil.
	Rates map[string]float64
}

func (s *GateService) thresholds() (low, high float64) {
	low, high = s.LowThreshold, s.HighThreshold
	if low <= 0 {
		low = DefaultLowThreshold
	}
	if high <= 0 {
		high = DefaultHighThreshold
	}
	return low, high
}

func (s *GateService) toReference(amount float64, currency string) (float64, error) {
	rates := s.Rates
	if rates == nil {
		rates = defaultRates
	}
	rate, ok := rates[currency]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, currency)
	}
	return amount * rate, nil
}

// Requirement evaluates what an action demands before any exemption is
// considered. Payments scale with the converted amount; every other
// privileged action always demands a full challenge.
func (s *GateService) Requirement(action domain.ActionType, amount float64, currency string) (domain.Requirement, error) {
	if action != domain.ActionPayment {
		return domain.RequireChallenge, nil
	}

	converted, err := s.toReference(amount, currency)
	if err != nil {
		return "", err
	}

	low, high := s.thresholds()
	switch {
	case converted < low:
		return domain.RequireNone, nil
	case converted < high:
		return domain.RequireConfirmation, nil
	default:
		return domain.RequireChallenge, nil
	}
}

// AuthorizeParams describes an action a subject wants to perform.
type AuthorizeParams struct {
	SubjectID string
	DeviceID  string // optional; enables the trusted-device exemption
	Action    domain.ActionType
	Amount    float64
	Currency  string

	// Challenge settings used when a full challenge is demanded.
	Method      domain.Method
	Destination string
}

// AuthorizeResult is the gate's answer: either a minted receipt (the action
// may proceed) or the step the subject must complete first.
type AuthorizeResult struct {
	Requirement domain.Requirement
	Receipt     *domain.AuthorizedAction
	Token       string // signed receipt token, set when Receipt is
	SessionID   string // set when a challenge was initiated
}

// Authorize runs the gate for an action. Low-risk actions and trusted devices
// get an immediate receipt; medium-risk payments are sent back for explicit
// confirmation; everything else gets a challenge session whose completion
// (via Complete) mints the receipt.
func (s *GateService) Authorize(ctx context.Context, p AuthorizeParams) (AuthorizeResult, error) {
	requirement, err := s.Requirement(p.Action, p.Amount, p.Currency)
	if err != nil {
		return AuthorizeResult{}, err
	}

	if requirement == domain.RequireNone {
		receipt, token, err := s.mint(ctx, p.SubjectID, p.Action, p.Amount, p.Currency, domain.AMRNone)
		if err != nil {
			return AuthorizeResult{}, err
		}
		return AuthorizeResult{Requirement: requirement, Receipt: &receipt, Token: token}, nil
	}

	// A trusted device satisfies both confirmation and challenge tiers.
	if p.DeviceID != "" {
		trusted, err := s.Devices.IsTrusted(ctx, p.SubjectID, p.DeviceID)
		if err != nil {
			return AuthorizeResult{}, err
		}
		if trusted {
			receipt, token, err := s.mint(ctx, p.SubjectID, p.Action, p.Amount, p.Currency, domain.AMRDevice)
			if err != nil {
				return AuthorizeResult{}, err
			}
			return AuthorizeResult{Requirement: requirement, Receipt: &receipt, Token: token}, nil
		}
	}

	if requirement == domain.RequireConfirmation {
		return AuthorizeResult{Requirement: requirement}, nil
	}

	sess, err := s.Sessions.Initiate(ctx, InitiateParams{
		SubjectID:   p.SubjectID,
		Method:      p.Method,
		Destination: p.Destination,
		ActionType:  p.Action,
		Amount:      p.Amount,
		Currency:    p.Currency,
	})
	if err != nil {
		return AuthorizeResult{}, err
	}
	return AuthorizeResult{Requirement: requirement, SessionID: sess.ID}, nil
}

// Confirm satisfies a confirmation-tier action with an explicit yes from the
// subject. It re-evaluates the requirement so a client cannot downgrade a
// challenge-tier action to a button press.
func (s *GateService) Confirm(ctx context.Context, subjectID string, action domain.ActionType, amount float64, currency string) (domain.AuthorizedAction, string, error) {
	requirement, err := s.Requirement(action, amount, currency)
	if err != nil {
		return domain.AuthorizedAction{}, "", err
	}
	if requirement == domain.RequireChallenge {
		return domain.AuthorizedAction{}, "", ErrConfirmationNotSufficient
	}

	amr := domain.AMRConfirm
	if requirement == domain.RequireNone {
		amr = domain.AMRNone
	}
	return s.mint(ctx, subjectID, action, amount, currency, amr)
}

// Complete finishes a challenge-tier authorization: it verifies the code
// against the subject's session and, on success, mints the receipt from the
// step-up context the session carried.
func (s *GateService) Complete(ctx context.Context, sessionID, subjectID, code string) (domain.AuthorizedAction, string, error) {
	sess, err := s.Sessions.Verify(ctx, sessionID, subjectID, code)
	if err != nil {
		return domain.AuthorizedAction{}, "", err
	}

	amr := domain.AMRSMS
	if sess.Method == domain.MethodTOTP {
		amr = domain.AMRTOTP
	}
	return s.MintForSession(ctx, sess, amr)
}

// MintForSession turns a verified session's step-up context into a receipt.
// Used by transports that drive verification through the session API and need
// the receipt minted in the same request.
func (s *GateService) MintForSession(ctx context.Context, sess domain.VerificationSession, amr string) (domain.AuthorizedAction, string, error) {
	return s.mint(ctx, sess.SubjectID, sess.ActionType, sess.Amount, sess.Currency, amr)
}

// HasValidAuthorization returns the subject's most recent unexpired receipt
// for the action, or domain.ErrNotFound when they must verify (again).
func (s *GateService) HasValidAuthorization(ctx context.Context, subjectID string, action domain.ActionType) (domain.AuthorizedAction, error) {
	receipt, err := s.Store.Receipts().LatestValid(ctx, subjectID, action, time.Now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return domain.AuthorizedAction{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.AuthorizedAction{}, fmt.Errorf("failed to look up receipt: %w", err)
	}
	return receipt, nil
}

func (s *GateService) mint(ctx context.Context, subjectID string, action domain.ActionType, amount float64, currency, amr string) (domain.AuthorizedAction, string, error) {
	now := time.Now().UTC()
	receipt := domain.AuthorizedAction{
		ID:           idx.New().String(),
		SubjectID:    subjectID,
		ActionType:   action,
		Amount:       amount,
		Currency:     currency,
		AMR:          amr,
		AuthorizedAt: now,
		ExpiresAt:    now.Add(ReceiptValidity),
	}
	if err := s.Store.Receipts().Create(ctx, receipt); err != nil {
		return domain.AuthorizedAction{}, "", fmt.Errorf("failed to store receipt: %w", err)
	}

	token, err := s.signReceipt(receipt)
	if err != nil {
		return domain.AuthorizedAction{}, "", err
	}

	s.Auditor.Record(ctx, subjectID, domain.AuditActionAuthorized, map[string]any{
		"receipt_id": receipt.ID,
		"action":     string(action),
		"amr":        amr,
	})
	slogx.FromContext(ctx).Info("action authorized",
		slog.String("receipt_id", receipt.ID),
		slog.String("action", string(action)),
		slog.String("amr", amr),
	)
	return receipt, token, nil
}

// receiptClaims is the signed form of a receipt, handed to downstream
// services so they can verify an authorization without a store round-trip.
type receiptClaims struct {
	jwt.RegisteredClaims
	Action   string  `json:"act"`
	AMR      string  `json:"amr"`
	Amount   float64 `json:"amount,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

func (s *GateService) signReceipt(receipt domain.AuthorizedAction) (string, error) {
	claims := receiptClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        receipt.ID,
			Subject:   receipt.SubjectID,
			IssuedAt:  jwt.NewNumericDate(receipt.AuthorizedAt),
			ExpiresAt: jwt.NewNumericDate(receipt.ExpiresAt),
		},
		Action:   string(receipt.ActionType),
		AMR:      receipt.AMR,
		Amount:   receipt.Amount,
		Currency: receipt.Currency,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.ReceiptSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign receipt: %w", err)
	}
	return token, nil
}

// VerifyReceiptToken checks a receipt token's signature and expiry and
// returns the receipt it encodes.
func (s *GateService) VerifyReceiptToken(token string) (domain.AuthorizedAction, error) {
	var claims receiptClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.ReceiptSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return domain.AuthorizedAction{}, ErrInvalidReceipt
	}

	return domain.AuthorizedAction{
		ID:           claims.ID,
		SubjectID:    claims.Subject,
		ActionType:   domain.ActionType(claims.Action),
		Amount:       claims.Amount,
		Currency:     claims.Currency,
		AMR:          claims.AMR,
		AuthorizedAt: claims.IssuedAt.Time,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}
