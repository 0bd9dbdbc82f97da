package stepup_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

// generateTOTP generates a TOTP code for the given secret.
func generateTOTP(t *testing.T, secret string) string {
	t.Helper()

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	return code
}

// TestTOTPEnrollmentLifecycle covers enroll, activate, challenge with a
// generated code, and disable.
func TestTOTPEnrollmentLifecycle(t *testing.T) {
	baseURL, cleanup := setupStepUpStack(t)
	defer cleanup()

	token := bearerToken(t, "enroll-user")

	// Enroll: provisioning material comes back in one shot.
	status, raw := doJSON(t, http.MethodPost, baseURL+"/v1/totp/enroll", token, nil)
	require.Equal(t, http.StatusOK, status, "body: %s", raw)

	enrollment := decode[enrollResponse](t, raw)
	require.NotEmpty(t, enrollment.Secret)
	require.True(t, strings.HasPrefix(enrollment.URI, "otpauth://totp/"), "uri: %s", enrollment.URI)
	require.True(t, strings.HasPrefix(enrollment.QRCode, "data:image/png;base64,"))
	require.Equal(t, "enroll-user", enrollment.Account)

	t.Logf("Enrolled, issuer=%s", enrollment.Issuer)

	// A totp challenge before activation must demand setup.
	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/challenges", token,
		map[string]string{"method": "totp"})
	require.Equal(t, http.StatusConflict, status, "body: %s", raw)

	// Activate with a code generated from the shared secret.
	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/totp/activate", token,
		map[string]string{"code": generateTOTP(t, enrollment.Secret)})
	require.Equal(t, http.StatusNoContent, status, "body: %s", raw)

	// Re-enrolling while active is rejected.
	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/totp/enroll", token, nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "already_enrolled", decode[errorResponse](t, raw).Error)

	// Full challenge round trip with the authenticator.
	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/challenges", token,
		map[string]string{"method": "totp"})
	require.Equal(t, http.StatusCreated, status, "body: %s", raw)

	challenge := decode[challengeResponse](t, raw)
	require.NotEmpty(t, challenge.SessionID)
	require.Equal(t, "totp", challenge.Method)

	status, raw = doJSON(t, http.MethodPost,
		baseURL+"/v1/challenges/"+challenge.SessionID+"/verify", token,
		map[string]string{"code": generateTOTP(t, enrollment.Secret)})
	require.Equal(t, http.StatusOK, status, "body: %s", raw)
	require.True(t, decode[verifyResponse](t, raw).Verified)

	t.Logf("Challenge %s verified with authenticator code", challenge.SessionID)

	// Disabling demands a valid code while the enrollment is active.
	status, _ = doJSON(t, http.MethodDelete, baseURL+"/v1/totp", token,
		map[string]string{"code": "000000"})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, http.MethodDelete, baseURL+"/v1/totp", token,
		map[string]string{"code": generateTOTP(t, enrollment.Secret)})
	require.Equal(t, http.StatusNoContent, status)

	status, _ = doJSON(t, http.MethodPost, baseURL+"/v1/challenges", token,
		map[string]string{"method": "totp"})
	require.Equal(t, http.StatusConflict, status)
}

// TestActivationRejectsWrongCode verifies a bad activation code leaves the
// enrollment pending.
func TestActivationRejectsWrongCode(t *testing.T) {
	baseURL, cleanup := setupStepUpStack(t)
	defer cleanup()

	token := bearerToken(t, "activate-user")

	status, raw := doJSON(t, http.MethodPost, baseURL+"/v1/totp/enroll", token, nil)
	require.Equal(t, http.StatusOK, status, "body: %s", raw)
	enrollment := decode[enrollResponse](t, raw)

	status, raw = doJSON(t, http.MethodPost, baseURL+"/v1/totp/activate", token,
		map[string]string{"code": "000000"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_code", decode[errorResponse](t, raw).Error)

	// The pending enrollment survives and can still be activated.
	status, _ = doJSON(t, http.MethodPost, baseURL+"/v1/totp/activate", token,
		map[string]string{"code": generateTOTP(t, enrollment.Secret)})
	require.Equal(t, http.StatusNoContent, status)
}
