package http

import "time"

// Request and response bodies for the public API. Field names are part of the
// wire contract; keep them stable.

type InitiateChallengeRequest struct {
	Method      string `json:"method" example:"sms"`
	Destination string `json:"destination,omitempty" example:"+15551234567"`
}

type ChallengeResponse struct {
	SessionID string    `json:"session_id"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

type VerifyChallengeRequest struct {
	Code string `json:"code" example:"123456"`

	// TrustDevice registers the device after a successful verification.
	TrustDevice bool   `json:"trust_device,omitempty"`
	DeviceID    string `json:"device_id,omitempty"`
	DeviceName  string `json:"device_name,omitempty"`
}

type VerifyChallengeResponse struct {
	Verified bool             `json:"verified"`
	Receipt  *ReceiptResponse `json:"receipt,omitempty"`
	Token    string           `json:"token,omitempty"`
}

type EnrollResponse struct {
	Secret  string `json:"secret"`
	URI     string `json:"uri"`
	QRCode  string `json:"qr_code"` // base64 data URI PNG
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

type ActivateEnrollmentRequest struct {
	Code string `json:"code" example:"123456"`
}

type DisableEnrollmentRequest struct {
	Code string `json:"code,omitempty" example:"123456"`
}

type TrustDeviceRequest struct {
	DeviceID string `json:"device_id"`
	Name     string `json:"name,omitempty"`
}

type DeviceResponse struct {
	DeviceID  string    `json:"device_id"`
	Name      string    `json:"name,omitempty"`
	TrustedAt time.Time `json:"trusted_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthorizeRequest struct {
	Action   string  `json:"action" example:"payment"`
	Amount   float64 `json:"amount,omitempty" example:"250.00"`
	Currency string  `json:"currency,omitempty" example:"USD"`
	DeviceID string  `json:"device_id,omitempty"`

	Method      string `json:"method,omitempty" example:"totp"`
	Destination string `json:"destination,omitempty"`
}

type AuthorizeResponse struct {
	Requirement string           `json:"requirement"`
	SessionID   string           `json:"session_id,omitempty"`
	Receipt     *ReceiptResponse `json:"receipt,omitempty"`
	Token       string           `json:"token,omitempty"`
}

type ConfirmRequest struct {
	Action   string  `json:"action" example:"payment"`
	Amount   float64 `json:"amount,omitempty" example:"250.00"`
	Currency string  `json:"currency,omitempty" example:"USD"`
}

type CompleteRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code" example:"123456"`
}

type ReceiptResponse struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	Amount       float64   `json:"amount,omitempty"`
	Currency     string    `json:"currency,omitempty"`
	AMR          string    `json:"amr"`
	AuthorizedAt time.Time `json:"authorized_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuditEventResponse struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	Severity  string         `json:"severity"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	At        time.Time      `json:"at"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
