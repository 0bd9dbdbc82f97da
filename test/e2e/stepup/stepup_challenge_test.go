package stepup_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSMSChallengeAttemptLimiting verifies the attempt counter and the
// lockout that follows five wrong codes. This prevents brute force attacks
// on delivered codes.
func TestSMSChallengeAttemptLimiting(t *testing.T) {
	baseURL, cleanup := setupStepUpStack(t)
	defer cleanup()

	token := bearerToken(t, "lockout-user")

	status, raw := doJSON(t, http.MethodPost, baseURL+"/v1/challenges", token,
		map[string]string{"method": "sms", "destination": "+15551230001"})
	require.Equal(t, http.StatusCreated, status, "body: %s", raw)

	challenge := decode[challengeResponse](t, raw)
	verifyURL := baseURL + "/v1/challenges/" + challenge.SessionID + "/verify"

	// Four wrong answers count down the remaining attempts.
	for i := 1; i <= 4; i++ {
		status, raw = doJSON(t, http.MethodPost, verifyURL, token,
			map[string]string{"code": "000000"})
		require.Equal(t, http.StatusBadRequest, status, "attempt %d, body: %s", i, raw)

		failure := decode[errorResponse](t, raw)
		require.NotNil(t, failure.RemainingAttempts, "attempt %d", i)
		require.Equal(t, 5-i, *failure.RemainingAttempts, "attempt %d", i)

		t.Logf("Attempt %d rejected, %d remaining", i, *failure.RemainingAttempts)
	}

	// The fifth wrong answer locks the subject out.
	status, raw = doJSON(t, http.MethodPost, verifyURL, token,
		map[string]string{"code": "000000"})
	require.Equal(t, http.StatusLocked, status, "body: %s", raw)

	// Further attempts against the same session still report the lockout,
	// not a missing session.
	status, _ = doJSON(t, http.MethodPost, verifyURL, token,
		map[string]string{"code": "000000"})
	require.Equal(t, http.StatusLocked, status)

	// A locked subject cannot start a fresh challenge either.
	status, _ = doJSON(t, http.MethodPost, baseURL+"/v1/challenges", token,
		map[string]string{"method": "sms", "destination": "+15551230001"})
	require.Equal(t, http.StatusLocked, status)

	t.Logf("Lockout enforced across the session and new challenges")

	// Other subjects are unaffected.
	otherToken := bearerToken(t, "unaffected-user")
	status, _ = doJSON(t, http.MethodPost, baseURL+"/v1/challenges", otherToken,
		map[string]string{"method": "sms", "destination": "+15551230002"})
	require.Equal(t, http.StatusCreated, status)
}

// TestChallengeResendAndCancel verifies re-delivery and cancellation. Resend
// replaces the session outright, so the old id stops working.
func TestChallengeResendAndCancel(t *testing.T) {
	baseURL, cleanup := setupStepUpStack(t)
	defer cleanup()

	token := bearerToken(t, "cancel-user")

	status, raw := doJSON(t, http.MethodPost, baseURL+"/v1/challenges", token,
		map[string]string{"method": "sms", "destination": "+15551230003"})
	require.Equal(t, http.StatusCreated, status, "body: %s", raw)

	challenge := decode[challengeResponse](t, raw)
	base := baseURL + "/v1/challenges/" + challenge.SessionID

	status, raw = doJSON(t, http.MethodPost, base+"/resend", token, nil)
	require.Equal(t, http.StatusCreated, status, "body: %s", raw)

	replacement := decode[challengeResponse](t, raw)
	require.NotEmpty(t, replacement.SessionID)
	require.NotEqual(t, challenge.SessionID, replacement.SessionID)

	// The replaced session no longer exists.
	status, _ = doJSON(t, http.MethodPost, base+"/verify", token,
		map[string]string{"code": "000000"})
	require.Equal(t, http.StatusNotFound, status)

	replacementBase := baseURL + "/v1/challenges/" + replacement.SessionID
	status, _ = doJSON(t, http.MethodDelete, replacementBase, token, nil)
	require.Equal(t, http.StatusNoContent, status)

	// The cancelled session is gone.
	status, _ = doJSON(t, http.MethodPost, replacementBase+"/verify", token,
		map[string]string{"code": "000000"})
	require.Equal(t, http.StatusNotFound, status)

	// Cancelling again is a no-op.
	status, _ = doJSON(t, http.MethodDelete, replacementBase, token, nil)
	require.Equal(t, http.StatusNoContent, status)
}

// TestChallengeValidation verifies request validation errors.
func TestChallengeValidation(t *testing.T) {
	baseURL, cleanup := setupStepUpStack(t)
	defer cleanup()

	token := bearerToken(t, "validation-user")

	// Unknown method.
	status, _ := doJSON(t, http.MethodPost, baseURL+"/v1/challenges", token,
		map[string]string{"method": "carrier-pigeon"})
	require.Equal(t, http.StatusBadRequest, status)

	// SMS without a destination.
	status, _ = doJSON(t, http.MethodPost, baseURL+"/v1/challenges", token,
		map[string]string{"method": "sms"})
	require.Equal(t, http.StatusBadRequest, status)

	// Verifying an unknown session.
	status, _ = doJSON(t, http.MethodPost,
		baseURL+"/v1/challenges/01ARZ3NDEKTSV4RRFFQ69G5FAV/verify", token,
		map[string]string{"code": "000000"})
	require.Equal(t, http.StatusNotFound, status)
}
