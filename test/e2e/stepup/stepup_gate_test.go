package stepup_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStepUpGateTiers walks a payment through each tier of the authorization
// gate: below the low threshold, between the thresholds, and above the high
// threshold with a full authenticator challenge.
func TestStepUpGateTiers(t *testing.T) {
	baseURL, cleanup := setupStepUpStack(t)
	defer cleanup()

	token := bearerToken(t, "gate-user")
	secret := enrollAndActivateTOTP(t, baseURL, token)

	// Tier 1: small payments sail through with an immediate receipt.
	status, raw := doJSON(t, http.MethodPost, baseURL+"/v1/stepup/authorize", token,
		map[string]any{"action": "payment", "amount": 25, "currency": "USD"})
	require.Equal(t, http.StatusOK, status, "body: %s", raw)

	low := decode[authorizeResponse](t, raw)
	require.Equal(t, "none", low.Requirement)
	require.NotNil(t, low.Receipt)
	require.Equal(t, "none", low.Receipt.AMR)
	require.NotEmpty(t, low.Token)

	t.Logf("Low tier authorized immediately, receipt %s", low.Receipt.ID)

	// Tier 2: medium payments need an explicit confirmation.
	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/stepup/authorize", token,
		map[string]any{"action": "payment", "amount": 250, "currency": "USD"})
	require.Equal(t, http.StatusOK, status, "body: %s", raw)

	medium := decode[authorizeResponse](t, raw)
	require.Equal(t, "confirmation", medium.Requirement)
	require.Nil(t, medium.Receipt, "no receipt before confirming")

	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/stepup/confirm", token,
		map[string]any{"action": "payment", "amount": 250, "currency": "USD"})
	require.Equal(t, http.StatusOK, status, "body: %s", raw)

	confirmed := decode[authorizeResponse](t, raw)
	require.NotNil(t, confirmed.Receipt)
	require.Equal(t, "confirm", confirmed.Receipt.AMR)

	t.Logf("Medium tier confirmed, receipt %s", confirmed.Receipt.ID)

	// Confirmation cannot satisfy the challenge tier.
	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/stepup/confirm", token,
		map[string]any{"action": "payment", "amount": 5000, "currency": "USD"})
	require.Equal(t, http.StatusForbidden, status, "body: %s", raw)
	require.Equal(t, "challenge_required", decode[errorResponse](t, raw).Error)

	// Tier 3: large payments demand a passcode challenge.
	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/stepup/authorize", token,
		map[string]any{"action": "payment", "amount": 5000, "currency": "USD", "method": "totp"})
	require.Equal(t, http.StatusOK, status, "body: %s", raw)

	high := decode[authorizeResponse](t, raw)
	require.Equal(t, "challenge", high.Requirement)
	require.NotEmpty(t, high.SessionID)
	require.Nil(t, high.Receipt)

	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/stepup/complete", token,
		map[string]string{"session_id": high.SessionID, "code": generateTOTP(t, secret)})
	require.Equal(t, http.StatusOK, status, "body: %s", raw)

	completed := decode[authorizeResponse](t, raw)
	require.NotNil(t, completed.Receipt)
	require.Equal(t, "totp", completed.Receipt.AMR)
	require.Equal(t, "payment", completed.Receipt.Action)
	require.InDelta(t, 5000, completed.Receipt.Amount, 0.01)
	require.NotEmpty(t, completed.Token)

	t.Logf("High tier challenge completed, receipt %s", completed.Receipt.ID)

	// The receipt is queryable while it is valid.
	status, raw = doJSON(t, http.MethodGet, baseURL+"/v1/stepup/receipt?action=payment", token, nil)
	require.Equal(t, http.StatusOK, status, "body: %s", raw)
	require.Equal(t, "payment", decode[receiptResponse](t, raw).Action)
}

// TestTrustedDeviceExemption verifies that a trusted device skips the
// challenge tier and that revocation restores it.
func TestTrustedDeviceExemption(t *testing.T) {
	baseURL, cleanup := setupStepUpStack(t)
	defer cleanup()

	token := bearerToken(t, "device-user")

	status, raw := doJSON(t, http.MethodPost, baseURL+"/v1/devices", token,
		map[string]string{"device_id": "laptop-01", "name": "Work laptop"})
	require.Equal(t, http.StatusCreated, status, "body: %s", raw)

	device := decode[deviceResponse](t, raw)
	require.Equal(t, "laptop-01", device.DeviceID)
	require.True(t, device.ExpiresAt.After(device.TrustedAt))

	// A high-value payment from the trusted device mints a receipt without
	// any challenge.
	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/stepup/authorize", token,
		map[string]any{"action": "payment", "amount": 5000, "currency": "USD", "device_id": "laptop-01"})
	require.Equal(t, http.StatusOK, status, "body: %s", raw)

	exempt := decode[authorizeResponse](t, raw)
	require.NotNil(t, exempt.Receipt)
	require.Equal(t, "device", exempt.Receipt.AMR)

	t.Logf("Trusted device exemption minted receipt %s", exempt.Receipt.ID)

	// An unknown device gets no exemption and falls through to a challenge.
	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/stepup/authorize", token,
		map[string]any{
			"action": "transfer", "amount": 1, "currency": "USD",
			"device_id": "stranger", "method": "sms", "destination": "+15551230004",
		})
	require.Equal(t, http.StatusOK, status, "body: %s", raw)

	unknown := decode[authorizeResponse](t, raw)
	require.Equal(t, "challenge", unknown.Requirement)
	require.Nil(t, unknown.Receipt)
	require.NotEmpty(t, unknown.SessionID)

	// Revoke and confirm the exemption is gone.
	status, _ = doJSON(t, http.MethodDelete, baseURL+"/v1/devices/laptop-01", token, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, raw = doJSON(t, http.MethodGet, baseURL+"/v1/devices", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, decode[[]deviceResponse](t, raw))

	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/stepup/authorize", token,
		map[string]any{
			"action": "payment", "amount": 5000, "currency": "USD",
			"device_id": "laptop-01", "method": "sms", "destination": "+15551230005",
		})
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, decode[authorizeResponse](t, raw).Receipt)
}

// TestCurrencyConversion verifies thresholds are applied in the reference
// currency.
func TestCurrencyConversion(t *testing.T) {
	baseURL, cleanup := setupStepUpStack(t)
	defer cleanup()

	token := bearerToken(t, "currency-user")

	// 95 EUR converts to above the 100 USD low threshold.
	status, raw := doJSON(t, http.MethodPost, baseURL+"/v1/stepup/authorize", token,
		map[string]any{"action": "payment", "amount": 95, "currency": "EUR"})
	require.Equal(t, http.StatusOK, status, "body: %s", raw)
	require.Equal(t, "confirmation", decode[authorizeResponse](t, raw).Requirement)

	// Unknown currencies are rejected outright.
	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/stepup/authorize", token,
		map[string]any{"action": "payment", "amount": 10, "currency": "XYZ"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "unknown_currency", decode[errorResponse](t, raw).Error)
}
